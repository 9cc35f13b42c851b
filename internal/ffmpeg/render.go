package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/crop"
)

// RenderSpec carries everything the final encode pass needs. AudioIndex
// is the absolute stream index to copy, or -1 for video-only output.
type RenderSpec struct {
	InputFile       string
	OutputFile      string
	TrfPath         string
	Transform       config.TransformSettings
	Rect            crop.Rect
	OutputWidth     int
	OutputHeight    int
	AudioIndex      int
	CopySubs        bool
	StartSeconds    *float64
	DurationSeconds *float64
	Verbose         bool
}

func (s *RenderSpec) baseArgs() []string {
	args := []string{"ffmpeg", "-y", "-hide_banner", "-loglevel", "error"}
	args = appendRangeArgs(args, s.StartSeconds, s.DurationSeconds)
	return append(args, "-i", s.InputFile)
}

func (s *RenderSpec) streamArgs() []string {
	var args []string
	if s.AudioIndex >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:%d", s.AudioIndex))
	}
	if s.CopySubs {
		args = append(args, "-map", "0:s?")
	}
	args = append(args, "-map_metadata", "0")
	return args
}

func (s *RenderSpec) codecArgs() []string {
	args := []string{"-c:v", "libx264", "-crf", "18", "-preset", "medium", "-pix_fmt", "yuv420p"}
	if s.AudioIndex >= 0 {
		args = append(args, "-c:a", "copy")
	}
	if s.CopySubs {
		args = append(args, "-c:s", "copy")
	}
	return args
}

func (s *RenderSpec) transformFilter() string {
	return fmt.Sprintf(
		"vidstabtransform=input=%s:relative=1:optzoom=0:zoom=0:crop=black:optalgo=%s:smoothing=%d",
		EscapeFilterValue(s.TrfPath), s.Transform.OptAlgo, s.Transform.Smoothing,
	)
}

// Render runs the crop-only encode: stabilize, crop to the fixed rect,
// scale back to the source resolution.
func Render(ctx context.Context, s RenderSpec) error {
	args := s.baseArgs()
	args = append(args, "-map", "0:v:0")
	args = append(args, s.streamArgs()...)
	filter := fmt.Sprintf("%s,crop=w=%d:h=%d:x=%d:y=%d,scale=%d:%d",
		s.transformFilter(), s.Rect.W, s.Rect.H, s.Rect.X, s.Rect.Y,
		s.OutputWidth, s.OutputHeight)
	args = append(args, "-vf", filter)
	args = append(args, s.codecArgs()...)
	args = append(args, s.OutputFile)

	if _, err := Execute(ctx, ExecOptions{Verbose: s.Verbose}, args...); err != nil {
		return err
	}
	return verifyOutput(s.OutputFile)
}

// RenderFill runs the border-fill encode: the stabilized, cropped, scaled
// video is split into a center region and four edge bands; black pixels
// inside the bands (the stabilizer's exposed border) are keyed out and a
// constant-color base shows through. The center is overlaid untouched, so
// fill never reaches past the band.
func RenderFill(ctx context.Context, s RenderSpec, fps float64, fillColor string, bandPx int) error {
	if bandPx < 1 {
		return fmt.Errorf("fill band must be at least 1px, got %d", bandPx)
	}
	if bandPx*2 >= s.OutputWidth || bandPx*2 >= s.OutputHeight {
		return fmt.Errorf("fill band %dpx too large for %dx%d output",
			bandPx, s.OutputWidth, s.OutputHeight)
	}
	if s.Rect.Empty() {
		return fmt.Errorf("invalid crop rectangle for fill render")
	}

	ow := s.OutputWidth
	oh := s.OutputHeight
	band := bandPx
	centerW := ow - 2*band
	centerH := oh - 2*band

	args := s.baseArgs()
	args = append(args, "-f", "lavfi", "-i",
		fmt.Sprintf("color=c=%s:size=%dx%d:rate=%g", fillColor, ow, oh, fps))
	args = append(args, s.streamArgs()...)

	graph := strings.Join([]string{
		fmt.Sprintf("[0:v]%s,crop=w=%d:h=%d:x=%d:y=%d,scale=%d:%d,format=rgba,split=5[v0][v1][v2][v3][v4]",
			s.transformFilter(), s.Rect.W, s.Rect.H, s.Rect.X, s.Rect.Y, ow, oh),
		fmt.Sprintf("[v0]crop=w=%d:h=%d:x=%d:y=%d[center]", centerW, centerH, band, band),
		fmt.Sprintf("[v1]crop=w=%d:h=%d:x=0:y=0,colorkey=black:0.00001:0[top]", ow, band),
		fmt.Sprintf("[v2]crop=w=%d:h=%d:x=0:y=%d,colorkey=black:0.00001:0[bottom]", ow, band, oh-band),
		fmt.Sprintf("[v3]crop=w=%d:h=%d:x=0:y=0,colorkey=black:0.00001:0[left]", band, oh),
		fmt.Sprintf("[v4]crop=w=%d:h=%d:x=%d:y=0,colorkey=black:0.00001:0[right]", band, oh, ow-band),
		"[1:v]format=rgba[base]",
		"[base][left]overlay=0:0:shortest=1[t1]",
		fmt.Sprintf("[t1][right]overlay=%d:0:shortest=1[t2]", ow-band),
		"[t2][top]overlay=0:0:shortest=1[t3]",
		fmt.Sprintf("[t3][bottom]overlay=0:%d:shortest=1[t4]", oh-band),
		fmt.Sprintf("[t4][center]overlay=%d:%d:shortest=1[vout]", band, band),
	}, ";")

	args = append(args, "-filter_complex", graph, "-map", "[vout]")
	args = append(args, s.codecArgs()...)
	args = append(args, s.OutputFile)

	if _, err := Execute(ctx, ExecOptions{Verbose: s.Verbose}, args...); err != nil {
		return err
	}
	return verifyOutput(s.OutputFile)
}

func verifyOutput(path string) error {
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("render did not produce output file %q", path)
	}
	return nil
}
