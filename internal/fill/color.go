package fill

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R uint8 `yaml:"r" json:"r"`
	G uint8 `yaml:"g" json:"g"`
	B uint8 `yaml:"b" json:"b"`
}

// Hex formats the color as "#rrggbb" for filter expressions and the report.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// PatchSampler extracts the average color of a small center patch of the
// source at a given timestamp in seconds.
type PatchSampler interface {
	SamplePatch(ctx context.Context, atSeconds float64) (RGB, error)
}

// MedianColor samples the center patch at evenly spaced timestamps over
// [start, start+duration) and returns the per-channel median. The median
// keeps a single anomalous frame (a flash, a scene cut) from tinting the
// fill color.
func MedianColor(ctx context.Context, sampler PatchSampler, start, duration float64, samples int) (RGB, error) {
	if samples <= 0 {
		return RGB{}, fmt.Errorf("sample count must be positive, got %d", samples)
	}
	if duration <= 0 {
		return RGB{}, fmt.Errorf("sampling duration must be positive, got %g", duration)
	}
	rs := make([]int, 0, samples)
	gs := make([]int, 0, samples)
	bs := make([]int, 0, samples)
	for i := 0; i < samples; i++ {
		at := start + (float64(i)+0.5)*duration/float64(samples)
		c, err := sampler.SamplePatch(ctx, at)
		if err != nil {
			return RGB{}, fmt.Errorf("sampling patch at %.3fs: %w", at, err)
		}
		rs = append(rs, int(c.R))
		gs = append(gs, int(c.G))
		bs = append(bs, int(c.B))
	}
	return RGB{R: medianByte(rs), G: medianByte(gs), B: medianByte(bs)}, nil
}

func medianByte(values []int) uint8 {
	sort.Ints(values)
	n := len(values)
	if n%2 == 1 {
		return uint8(values[n/2])
	}
	return uint8((values[n/2-1] + values[n/2]) / 2)
}

// BandWidth converts the worst one-sided gap measured in source pixels to
// the fill band width in output pixels, accounting for the upscale from
// the crop back to source resolution. The +2 absorbs rounding at the crop
// edge, so the band is never narrower than 2px even at zero gap.
func BandWidth(maxGapPx float64, srcWidth, cropW int) int {
	scaled := 0.0
	if maxGapPx > 0 && cropW > 0 {
		scaled = maxGapPx * float64(srcWidth) / float64(cropW)
	}
	return int(math.Ceil(scaled)) + 2
}
