package planner

import (
	"github.com/backmassage/steadycrop/internal/crop"
	"github.com/backmassage/steadycrop/internal/fill"
	"github.com/backmassage/steadycrop/internal/reliability"
)

// Outcome is the terminal state of the decision.
type Outcome string

const (
	// OutcomeRejected means the motion estimate itself cannot be trusted.
	OutcomeRejected Outcome = "rejected"
	// OutcomeCropOnly means a single static crop satisfies every constraint.
	OutcomeCropOnly Outcome = "crop_only"
	// OutcomeCropInfeasible means the crop fails and fill fallback is disabled.
	OutcomeCropInfeasible Outcome = "crop_infeasible"
	// OutcomeFillFallback means the crop fails but a budgeted border fill works.
	OutcomeFillFallback Outcome = "fill_fallback"
	// OutcomeFillCropInfeasible means no crop meets even the relaxed floors.
	OutcomeFillCropInfeasible Outcome = "fill_crop_infeasible"
	// OutcomeFillBudgetExceeded means the fill crop needs more fill than allowed.
	OutcomeFillBudgetExceeded Outcome = "fill_budget_exceeded"
)

// Report mode strings for each outcome family.
const (
	ModeMotionRejection = "motion_rejection"
	ModeCropOnly        = "crop_only"
	ModeFillFallback    = "fill_fallback"
)

// Result carries the decision and every intermediate artifact the report
// needs: the motion verdict, both candidate rectangles, and the fill
// budget evaluation when it ran.
type Result struct {
	Outcome Outcome

	Motion reliability.Verdict

	// CropRect is the tightest-common crop ("crop to content"); may be
	// empty when the intersection collapsed.
	CropRect    crop.Rect
	CropReasons []string

	// FillCropRect is the rectangle selected for the fill fallback, set
	// only when the fallback was attempted.
	FillCropRect    crop.Rect
	FillCropReasons []string
	FillStats       *fill.Stats
}

// Pass reports whether the clip can be rendered.
func (r *Result) Pass() bool {
	return r.Outcome == OutcomeCropOnly || r.Outcome == OutcomeFillFallback
}

// Mode returns the report mode string for the outcome.
func (r *Result) Mode() string {
	switch r.Outcome {
	case OutcomeRejected:
		return ModeMotionRejection
	case OutcomeCropOnly, OutcomeCropInfeasible:
		return ModeCropOnly
	default:
		return ModeFillFallback
	}
}

// Message returns the report message string for the outcome.
func (r *Result) Message() string {
	switch r.Outcome {
	case OutcomeRejected:
		if len(r.Motion.Reasons) == 1 {
			return r.Motion.Reasons[0]
		}
		return "unreliable_motion_multiple"
	case OutcomeCropInfeasible:
		return "crop infeasible"
	case OutcomeFillCropInfeasible:
		return "fill crop infeasible"
	case OutcomeFillBudgetExceeded:
		return "fill budget exceeded"
	default:
		return "ok"
	}
}

// RenderRect is the rectangle the render pass should use: the solved crop
// in crop-only mode, the fill crop in fallback mode, empty otherwise.
func (r *Result) RenderRect() crop.Rect {
	switch r.Outcome {
	case OutcomeCropOnly:
		return r.CropRect
	case OutcomeFillFallback:
		return r.FillCropRect
	}
	return crop.Rect{}
}
