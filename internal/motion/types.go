// Package motion holds the per-frame global motion path parsed from the
// stabilizer's debug output, and the translation geometry shared by the
// crop solver and the fill planner.
package motion

// FrameTransform is the estimated global motion of one frame relative to
// the reference: the translation, rotation, and uniform zoom needed to
// undo the frame's deviation.
type FrameTransform struct {
	DX          float64 // Pixels.
	DY          float64 // Pixels.
	Angle       float64 // Radians.
	ZoomPercent float64 // 0.5 means +0.5%.
	Missing     bool    // No usable estimate; counts toward budget denominators.
	IsReference bool    // Frame 0: the alignment target, no motion estimate.

	// Estimator diagnostics from the trailing comment line, when present.
	FieldError  float64
	FieldsCount int // -1 when the estimator reported no field count.
}

// ScaleRatio converts the frame's zoom percentage into a scale ratio
// (1.0 = no zoom).
func (t FrameTransform) ScaleRatio() float64 {
	return 1.0 + t.ZoomPercent/100.0
}

// Path is the ordered, immutable per-frame transform sequence for one
// analysis run. Length equals the analyzed frame count; index 0 is always
// the reference.
type Path struct {
	frames []FrameTransform
}

// NewPath wraps frames in a Path. The slice is owned by the Path after the
// call; callers must not retain or modify it.
func NewPath(frames []FrameTransform) *Path {
	return &Path{frames: frames}
}

// Len returns the number of analyzed frames.
func (p *Path) Len() int { return len(p.frames) }

// Frame returns the transform at index i.
func (p *Path) Frame(i int) FrameTransform { return p.frames[i] }

// Frames returns the underlying sequence for iteration. Read-only by
// convention; the Path is the single owner.
func (p *Path) Frames() []FrameTransform { return p.frames }

// MissingCount returns the number of non-reference frames without a usable
// estimate.
func (p *Path) MissingCount() int {
	n := 0
	for _, t := range p.frames {
		if !t.IsReference && t.Missing {
			n++
		}
	}
	return n
}
