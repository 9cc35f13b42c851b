package pipeline

import (
	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/display"
	"github.com/backmassage/steadycrop/internal/logging"
	"github.com/backmassage/steadycrop/internal/reliability"
)

// logRejectionSummary prints a one-screen summary of every reliability
// metric next to its threshold, plus clip timestamps for the worst
// offender frames, so a rejected clip can be reviewed at the exact
// moment that sank it.
func logRejectionSummary(log *logging.Logger, v *reliability.Verdict,
	rj config.RejectionSettings, fps float64, startSeconds *float64) {
	s := &v.Stats
	log.Error("FAIL unreliable motion")
	log.Error("reasons=%v", v.Reasons)
	log.Error("missing_fraction=%g (max %g)", s.MissingFraction, rj.MaxMissingFraction)
	log.Error("mad_tx/width=%g mad_ty/height=%g (max %g)",
		s.MADTXFraction, s.MADTYFraction, rj.MaxMADFraction)
	log.Error("max_scale_jump=%g (max %g)", s.MaxScaleJump, rj.MaxScaleJump)
	log.Error("max_abs_angle_rad=%g (max %g)", s.MaxAbsAngleRad, rj.MaxAbsAngleRad)
	log.Error("max_abs_zoom_percent=%g (max %g)", s.MaxAbsZoomPercent, rj.MaxAbsZoomPercent)

	if rj.Mode == config.RejectionBudgeted {
		log.Error("outlier_budget: max_frames_ratio=%g max_consecutive_frames=%d",
			rj.OutlierMaxFramesRatio, rj.OutlierMaxConsecutiveFrames)
		logBudget(log, "angle_outliers", s.AngleOutliers)
		logBudget(log, "zoom_outliers", s.ZoomOutliers)
		logBudget(log, "scale_outliers", s.ScaleJumpOutliers)
		logBudget(log, "any_outliers", s.CombinedOutliers)
	}

	if s.MaxAbsAngleFrame >= 0 {
		log.Error("max_abs_angle_frame=%d (%s)", s.MaxAbsAngleFrame,
			display.FormatFrameTime(s.MaxAbsAngleFrame, fps, startSeconds))
	}
	if s.MaxAbsZoomFrame >= 0 {
		log.Error("max_abs_zoom_frame=%d (%s)", s.MaxAbsZoomFrame,
			display.FormatFrameTime(s.MaxAbsZoomFrame, fps, startSeconds))
	}
	if s.MaxScaleJumpFrame >= 0 {
		log.Error("max_scale_jump_frame=%d (%s)", s.MaxScaleJumpFrame,
			display.FormatFrameTime(s.MaxScaleJumpFrame, fps, startSeconds))
	}
}

func logBudget(log *logging.Logger, label string, b reliability.OutlierBudget) {
	log.Error("%s: ratio=%g run=%d", label, b.BadFramesRatio, b.MaxConsecutiveBadFrames)
}
