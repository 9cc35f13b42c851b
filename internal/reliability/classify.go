// Package reliability gates the motion path: it decides whether the
// stabilizer's estimate can be trusted before any crop geometry is
// attempted. It never looks at pixels, only at the per-frame transforms.
package reliability

import (
	"math"
	"sort"

	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/motion"
)

// Reason codes reported on rejection. These are stable identifiers: they
// appear in the report and in the process failure message.
const (
	ReasonMissing = "unreliable_motion_missing"
	ReasonMAD     = "unreliable_motion_mad"
	ReasonAngle   = "unreliable_motion_angle"
	ReasonZoom    = "unreliable_motion_zoom"
	ReasonScale   = "unreliable_motion_scale"
)

// FrameValue pairs a frame index with a metric value for diagnostics.
type FrameValue struct {
	Frame int     `yaml:"frame" json:"frame"`
	Value float64 `yaml:"value" json:"value"`
}

// ScaleJump records the relative scale change between two adjacent valid
// frames.
type ScaleJump struct {
	Frame int     `yaml:"frame" json:"frame"` // The later frame of the pair.
	Value float64 `yaml:"value" json:"value"`
	From  int     `yaml:"from" json:"from"`
	To    int     `yaml:"to" json:"to"`
}

// OutlierBudget summarizes how many usable frames exceed a per-metric
// threshold, and the longest consecutive run of them.
type OutlierBudget struct {
	BadFrames               int     `yaml:"bad_frames" json:"bad_frames"`
	TotalFrames             int     `yaml:"total_frames" json:"total_frames"`
	BadFramesRatio          float64 `yaml:"bad_frames_ratio" json:"bad_frames_ratio"`
	MaxConsecutiveBadFrames int     `yaml:"max_consecutive_bad_frames" json:"max_consecutive_bad_frames"`
}

// Stats holds every measured reliability metric, retained in the report so
// thresholds can be tuned without re-running the analysis pass.
type Stats struct {
	MissingFraction   float64 `yaml:"missing_fraction" json:"missing_fraction"`
	MADTXFraction     float64 `yaml:"mad_tx_fraction" json:"mad_tx_fraction"`
	MADTYFraction     float64 `yaml:"mad_ty_fraction" json:"mad_ty_fraction"`
	MaxScaleJump      float64 `yaml:"max_scale_jump" json:"max_scale_jump"`
	MaxAbsAngleRad    float64 `yaml:"max_abs_angle_rad" json:"max_abs_angle_rad"`
	MaxAbsZoomPercent float64 `yaml:"max_abs_zoom_percent" json:"max_abs_zoom_percent"`

	// Worst-offender frame indices (-1 when no usable frames).
	MaxAbsAngleFrame  int `yaml:"max_abs_angle_frame" json:"max_abs_angle_frame"`
	MaxAbsZoomFrame   int `yaml:"max_abs_zoom_percent_frame" json:"max_abs_zoom_percent_frame"`
	MaxScaleJumpFrame int `yaml:"max_scale_jump_frame" json:"max_scale_jump_frame"`

	Top5AbsAngle   []FrameValue `yaml:"top_5_abs_angle" json:"top_5_abs_angle"`
	Top5AbsZoom    []FrameValue `yaml:"top_5_abs_zoom_percent" json:"top_5_abs_zoom_percent"`
	Top5ScaleJumps []ScaleJump  `yaml:"top_5_scale_jumps" json:"top_5_scale_jumps"`

	Mode              config.RejectionMode `yaml:"rejection_mode" json:"rejection_mode"`
	AngleOutliers     OutlierBudget        `yaml:"angle_outliers" json:"angle_outliers"`
	ZoomOutliers      OutlierBudget        `yaml:"zoom_outliers" json:"zoom_outliers"`
	ScaleJumpOutliers OutlierBudget        `yaml:"scale_jump_outliers" json:"scale_jump_outliers"`
	CombinedOutliers  OutlierBudget        `yaml:"combined_outliers" json:"combined_outliers"`
}

// Verdict is the classifier's outcome: the gate decision plus the reason
// codes and measured statistics behind it.
type Verdict struct {
	OK      bool
	Reasons []string
	Stats   Stats
}

// Classify checks the motion path against the rejection thresholds.
// Callers must have ensured the path has at least two frames; a path with
// zero valid (non-missing) frames is rejected immediately.
func Classify(path *motion.Path, width, height int, rj config.RejectionSettings) Verdict {
	frames := path.Frames()

	nonReference := 0
	missing := 0
	for _, t := range frames {
		if t.IsReference {
			continue
		}
		nonReference++
		if t.Missing {
			missing++
		}
	}
	missingFraction := 1.0
	if nonReference > 0 {
		missingFraction = float64(missing) / float64(nonReference)
	}

	var dxValues, dyValues []float64
	for _, t := range frames {
		if t.Missing {
			continue
		}
		dxValues = append(dxValues, t.DX)
		dyValues = append(dyValues, t.DY)
	}
	stats := Stats{
		MissingFraction:   missingFraction,
		MaxAbsAngleFrame:  -1,
		MaxAbsZoomFrame:   -1,
		MaxScaleJumpFrame: -1,
		Mode:              rj.Mode,
	}
	if len(dxValues) == 0 {
		return Verdict{OK: false, Reasons: []string{ReasonMissing}, Stats: stats}
	}

	var reasons []string
	stats.MADTXFraction = MAD(dxValues) / float64(width)
	stats.MADTYFraction = MAD(dyValues) / float64(height)
	if missingFraction > rj.MaxMissingFraction {
		reasons = append(reasons, ReasonMissing)
	}
	if stats.MADTXFraction > rj.MaxMADFraction || stats.MADTYFraction > rj.MaxMADFraction {
		reasons = append(reasons, ReasonMAD)
	}

	// Per-frame absolute metrics over usable (non-missing, non-reference)
	// frames, plus adjacent scale jumps between them.
	var usable []int
	var absAngles, absZooms []FrameValue
	for i, t := range frames {
		if t.Missing || t.IsReference {
			continue
		}
		usable = append(usable, i)
		absAngles = append(absAngles, FrameValue{Frame: i, Value: math.Abs(t.Angle)})
		absZooms = append(absZooms, FrameValue{Frame: i, Value: math.Abs(t.ZoomPercent)})
	}
	var jumps []ScaleJump
	for i := 0; i+1 < len(usable); i++ {
		i0 := usable[i]
		i1 := usable[i+1]
		s0 := frames[i0].ScaleRatio()
		s1 := frames[i1].ScaleRatio()
		if s0 <= 0 {
			continue
		}
		jumps = append(jumps, ScaleJump{Frame: i1, Value: math.Abs(s1/s0 - 1.0), From: i0, To: i1})
	}

	if top := topFrameValues(absAngles, 5); len(top) > 0 {
		stats.Top5AbsAngle = top
		stats.MaxAbsAngleRad = top[0].Value
		stats.MaxAbsAngleFrame = top[0].Frame
	}
	if top := topFrameValues(absZooms, 5); len(top) > 0 {
		stats.Top5AbsZoom = top
		stats.MaxAbsZoomPercent = top[0].Value
		stats.MaxAbsZoomFrame = top[0].Frame
	}
	if top := topScaleJumps(jumps, 5); len(top) > 0 {
		stats.Top5ScaleJumps = top
		stats.MaxScaleJump = top[0].Value
		stats.MaxScaleJumpFrame = top[0].Frame
	}

	angleBad := badFrameSet(absAngles, rj.MaxAbsAngleRad)
	zoomBad := badFrameSet(absZooms, rj.MaxAbsZoomPercent)
	scaleBad := make(map[int]bool)
	for _, j := range jumps {
		if j.Value > rj.MaxScaleJump {
			scaleBad[j.Frame] = true
		}
	}
	combinedBad := make(map[int]bool)
	for _, set := range []map[int]bool{angleBad, zoomBad, scaleBad} {
		for idx := range set {
			combinedBad[idx] = true
		}
	}
	stats.AngleOutliers = budgetStats(usable, angleBad)
	stats.ZoomOutliers = budgetStats(usable, zoomBad)
	stats.ScaleJumpOutliers = budgetStats(usable, scaleBad)
	stats.CombinedOutliers = budgetStats(usable, combinedBad)

	if rj.Mode == config.RejectionMax {
		if stats.MaxAbsAngleRad > rj.MaxAbsAngleRad {
			reasons = append(reasons, ReasonAngle)
		}
		if stats.MaxAbsZoomPercent > rj.MaxAbsZoomPercent {
			reasons = append(reasons, ReasonZoom)
		}
		if stats.MaxScaleJump > rj.MaxScaleJump {
			reasons = append(reasons, ReasonScale)
		}
	} else {
		if overBudget(stats.AngleOutliers, rj) {
			reasons = append(reasons, ReasonAngle)
		}
		if overBudget(stats.ZoomOutliers, rj) {
			reasons = append(reasons, ReasonZoom)
		}
		if overBudget(stats.ScaleJumpOutliers, rj) {
			reasons = append(reasons, ReasonScale)
		}
	}

	return Verdict{OK: len(reasons) == 0, Reasons: reasons, Stats: stats}
}

func overBudget(b OutlierBudget, rj config.RejectionSettings) bool {
	return b.BadFramesRatio > rj.OutlierMaxFramesRatio ||
		b.MaxConsecutiveBadFrames > rj.OutlierMaxConsecutiveFrames
}

// budgetStats counts bad frames and the longest consecutive bad run over
// the usable-frame order (missing frames break runs implicitly by not
// appearing in usable).
func budgetStats(usable []int, bad map[int]bool) OutlierBudget {
	count := 0
	run := 0
	maxRun := 0
	for _, idx := range usable {
		if bad[idx] {
			count++
			run++
			if run > maxRun {
				maxRun = run
			}
		} else {
			run = 0
		}
	}
	ratio := 1.0
	if len(usable) > 0 {
		ratio = float64(count) / float64(len(usable))
	}
	return OutlierBudget{
		BadFrames:               count,
		TotalFrames:             len(usable),
		BadFramesRatio:          ratio,
		MaxConsecutiveBadFrames: maxRun,
	}
}

func badFrameSet(values []FrameValue, threshold float64) map[int]bool {
	bad := make(map[int]bool)
	for _, v := range values {
		if v.Value > threshold {
			bad[v.Frame] = true
		}
	}
	return bad
}

func topFrameValues(values []FrameValue, n int) []FrameValue {
	sorted := make([]FrameValue, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func topScaleJumps(jumps []ScaleJump, n int) []ScaleJump {
	sorted := make([]ScaleJump, len(jumps))
	copy(sorted, jumps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
