package reliability

import "sort"

// Median returns the median of values. Panics on an empty slice; callers
// guard the zero-valid-frames case before computing dispersion.
func Median(values []float64) float64 {
	if len(values) == 0 {
		panic("reliability: median of empty slice")
	}
	items := make([]float64, len(values))
	copy(items, values)
	sort.Float64s(items)
	mid := len(items) / 2
	if len(items)%2 == 1 {
		return items[mid]
	}
	return (items[mid-1] + items[mid]) / 2.0
}

// MAD returns the median absolute deviation of values, a dispersion
// statistic robust against isolated spikes.
func MAD(values []float64) float64 {
	center := Median(values)
	dev := make([]float64, len(values))
	for i, v := range values {
		d := v - center
		if d < 0 {
			d = -d
		}
		dev[i] = d
	}
	return Median(dev)
}
