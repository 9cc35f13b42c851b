package crop

import (
	"math"

	"github.com/backmassage/steadycrop/internal/motion"
)

// Solve computes the static crop rectangle for the whole path: the
// intersection of every frame's valid bbox, rounded inward (ceil left/top,
// floor right/bottom) so the full-coverage guarantee survives integer
// rounding, then reduced to the largest centered rectangle matching the
// source aspect ratio.
//
// Missing frames contribute nothing; they carry no geometry. The returned
// rect is empty when the intersection collapses.
func Solve(path *motion.Path, width, height int) Rect {
	left := 0.0
	top := 0.0
	right := float64(width)
	bottom := float64(height)
	for _, t := range path.Frames() {
		if t.Missing {
			continue
		}
		l, tp, r, b := motion.ValidBBox(width, height, t.DX, t.DY)
		left = math.Max(left, l)
		top = math.Max(top, tp)
		right = math.Min(right, r)
		bottom = math.Min(bottom, b)
	}

	x0 := int(math.Ceil(left))
	y0 := int(math.Ceil(top))
	x1 := int(math.Floor(right))
	y1 := int(math.Floor(bottom))
	rawW := x1 - x0
	rawH := y1 - y0
	if rawW <= 0 || rawH <= 0 {
		return Rect{}
	}

	// Shrink one axis to the source aspect ratio so the crop upscales
	// cleanly without letterboxing, and center inside the raw rectangle.
	aspect := float64(width) / float64(height)
	var w, h int
	if float64(rawW)/float64(rawH) > aspect {
		h = rawH
		w = int(math.Floor(float64(h) * aspect))
	} else {
		w = rawW
		h = int(math.Floor(float64(w) / aspect))
	}
	if w <= 0 || h <= 0 {
		return Rect{}
	}
	return Rect{
		X: x0 + (rawW-w)/2,
		Y: y0 + (rawH-h)/2,
		W: w,
		H: h,
	}
}

// MinimumCentered computes the smallest centered, aspect-correct rectangle
// that meets the basic area/height floors. Used as the relaxed crop for the
// fill fallback when the solved rectangle is itself below the floors.
func MinimumCentered(width, height int, minAreaRatio float64, minHeightPx int) Rect {
	aspect := float64(width) / float64(height)
	requiredH := float64(minHeightPx)
	requiredArea := minAreaRatio * float64(width) * float64(height)
	if requiredArea > 0 {
		hArea := math.Sqrt(requiredArea / aspect)
		requiredH = math.Max(requiredH, hArea)
	}
	if requiredH > float64(height) {
		return Rect{}
	}
	requiredW := requiredH * aspect
	if requiredW > float64(width) {
		return Rect{}
	}
	w := int(math.Ceil(requiredW))
	h := int(math.Ceil(requiredH))
	if w <= 0 || h <= 0 || w > width || h > height {
		return Rect{}
	}
	return Rect{X: (width - w) / 2, Y: (height - h) / 2, W: w, H: h}
}
