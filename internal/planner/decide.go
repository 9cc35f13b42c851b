package planner

import (
	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/crop"
	"github.com/backmassage/steadycrop/internal/fill"
	"github.com/backmassage/steadycrop/internal/motion"
	"github.com/backmassage/steadycrop/internal/reliability"
)

// Decide runs the full feasibility decision for one clip.
//
// The order is fixed: reliability gates everything, because crop geometry
// computed from a garbage motion estimate is itself garbage. Only when
// the strict crop fails and the border mode allows it does the fill
// fallback run, first relaxing the crop to the basic floors, then
// checking the measured fill usage against the budgets.
func Decide(path *motion.Path, width, height int, settings *config.Settings,
	effectiveMinHeightPx int) Result {
	res := Result{
		Motion: reliability.Classify(path, width, height, settings.Rejection),
	}
	if !res.Motion.OK {
		res.Outcome = OutcomeRejected
		return res
	}

	cs := settings.Crop
	res.CropRect = crop.Solve(path, width, height)
	ok, reasons := crop.Check(width, height, res.CropRect,
		cs.MinAreaRatio, effectiveMinHeightPx, cs.CenterSafeMargin)
	res.CropReasons = reasons
	if ok {
		res.Outcome = OutcomeCropOnly
		return res
	}

	if settings.Border.Mode != config.BorderFillFall {
		res.Outcome = OutcomeCropInfeasible
		return res
	}

	// The solved rect is reused when it meets the basic floors; its only
	// failure then was the center-safe requirement, which fill is allowed
	// to relax. Otherwise fall back to the smallest acceptable rect.
	fillRect := res.CropRect
	okFill, fillReasons := crop.CheckBasic(width, height, fillRect,
		cs.MinAreaRatio, effectiveMinHeightPx)
	if !okFill {
		fillRect = crop.MinimumCentered(width, height, cs.MinAreaRatio, effectiveMinHeightPx)
		okFill, fillReasons = crop.CheckBasic(width, height, fillRect,
			cs.MinAreaRatio, effectiveMinHeightPx)
	}
	res.FillCropRect = fillRect
	res.FillCropReasons = fillReasons
	if !okFill {
		res.Outcome = OutcomeFillCropInfeasible
		return res
	}

	stats := fill.EvaluateBudget(path, width, height, fillRect, settings.Border.Fill)
	res.FillStats = &stats
	if !stats.Pass {
		res.Outcome = OutcomeFillBudgetExceeded
		return res
	}
	res.Outcome = OutcomeFillFallback
	return res
}
