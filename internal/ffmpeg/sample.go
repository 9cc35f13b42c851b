package ffmpeg

import (
	"context"
	"fmt"
	"math"

	"github.com/backmassage/steadycrop/internal/fill"
)

// CenterPatchSampler extracts the average color of a centered patch of
// the source frame at a timestamp, by cropping the patch and area-scaling
// it down to a single rgb24 pixel.
type CenterPatchSampler struct {
	InputFile string
	PatchW    int
	PatchH    int
	PatchX    int
	PatchY    int
}

// NewCenterPatchSampler sizes the patch as a fraction of the frame,
// clamped to at least one pixel and at most the frame itself.
func NewCenterPatchSampler(inputFile string, width, height int, patchFraction float64) *CenterPatchSampler {
	pw := int(math.Round(float64(width) * patchFraction))
	ph := int(math.Round(float64(height) * patchFraction))
	pw = min(max(pw, 1), width)
	ph = min(max(ph, 1), height)
	return &CenterPatchSampler{
		InputFile: inputFile,
		PatchW:    pw,
		PatchH:    ph,
		PatchX:    (width - pw) / 2,
		PatchY:    (height - ph) / 2,
	}
}

// SamplePatch implements [fill.PatchSampler].
func (s *CenterPatchSampler) SamplePatch(ctx context.Context, atSeconds float64) (fill.RGB, error) {
	filter := fmt.Sprintf("crop=%d:%d:%d:%d,scale=1:1:flags=area,format=rgb24",
		s.PatchW, s.PatchH, s.PatchX, s.PatchY)
	out, err := Execute(ctx, ExecOptions{CaptureStdout: true},
		"ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%g", atSeconds),
		"-i", s.InputFile,
		"-frames:v", "1",
		"-an", "-sn",
		"-vf", filter,
		"-f", "rawvideo",
		"-",
	)
	if err != nil {
		return fill.RGB{}, err
	}
	if len(out) < 3 {
		return fill.RGB{}, fmt.Errorf("expected 3 RGB bytes, got %d", len(out))
	}
	return fill.RGB{R: out[0], G: out[1], B: out[2]}, nil
}
