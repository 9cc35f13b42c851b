package probe

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	NbStreams  int
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
	Tags       map[string]string
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	PixFmt        string
	Width         int
	Height        int
	RFrameRate    string
	AvgFrameRate  string
	IsAttachedPic bool
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index         int
	Codec         string
	Channels      int
	ChannelLayout string
	Language      string
	IsDefault     bool
}

// SubtitleStream holds the parsed properties of a single subtitle stream.
type SubtitleStream struct {
	Index    int
	Codec    string
	Language string
	IsBitmap bool
}

// ProbeResult is the fully parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type ProbeResult struct {
	Format          FormatInfo
	PrimaryVideo    *VideoStream
	AudioStreams    []AudioStream
	SubtitleStreams []SubtitleStream
}

// FPS returns the primary video frame rate as a float, preferring the
// container-declared rate and falling back to the measured average.
// Returns 0 when neither is usable.
func (p *ProbeResult) FPS() float64 {
	if p.PrimaryVideo == nil {
		return 0
	}
	if f := fractionToFloat(p.PrimaryVideo.RFrameRate); f > 0 {
		return f
	}
	return fractionToFloat(p.PrimaryVideo.AvgFrameRate)
}

// FPSFraction returns the raw frame-rate fraction string used in cache
// keys, preferring the container-declared rate.
func (p *ProbeResult) FPSFraction() string {
	if p.PrimaryVideo == nil {
		return ""
	}
	if fractionToFloat(p.PrimaryVideo.RFrameRate) > 0 {
		return p.PrimaryVideo.RFrameRate
	}
	return p.PrimaryVideo.AvgFrameRate
}

// SelectAudioStream picks the audio stream to carry into the output: the
// first stream flagged default, else the first decodable stream. Returns
// nil when the file has no usable audio.
func (p *ProbeResult) SelectAudioStream() *AudioStream {
	var first *AudioStream
	for i := range p.AudioStreams {
		a := &p.AudioStreams[i]
		if a.Codec == "" || a.Codec == "none" {
			continue
		}
		if a.IsDefault {
			return a
		}
		if first == nil {
			first = a
		}
	}
	return first
}
