// Package fill plans the bounded border-fill fallback: it measures how
// much synthetic border a fixed crop would need over the motion path,
// checks that usage against the configured budgets, and derives the
// deterministic fill color.
package fill

import (
	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/crop"
	"github.com/backmassage/steadycrop/internal/motion"
)

// Budget-violation reason strings; stable report identifiers.
const (
	ReasonAreaExceeded        = "max_area_ratio exceeded"
	ReasonFramesExceeded      = "max_frames_ratio exceeded"
	ReasonConsecutiveExceeded = "max_consecutive_frames exceeded"
	ReasonInvalidCrop         = "invalid crop rectangle"
)

// Stats is the measured fill usage for a fixed crop over a motion path,
// plus the pass/fail verdict against the budgets.
type Stats struct {
	Pass                 bool     `yaml:"pass" json:"pass"`
	Reasons              []string `yaml:"reasons" json:"reasons"`
	TotalFrames          int      `yaml:"total_frames" json:"total_frames"`
	FramesWithFill       int      `yaml:"frames_with_fill" json:"frames_with_fill"`
	FramesRatio          float64  `yaml:"frames_ratio" json:"frames_ratio"`
	MaxConsecutiveFrames int      `yaml:"max_consecutive_frames" json:"max_consecutive_frames"`
	MaxFillAreaRatio     float64  `yaml:"max_fill_area_ratio" json:"max_fill_area_ratio"`
	MaxGapPx             float64  `yaml:"max_gap_px" json:"max_gap_px"`
}

// EvaluateBudget measures, for every valid frame, the area of the fixed
// crop not covered by that frame's valid bbox, and checks the usage
// against the budgets: worst per-frame fill area ratio, fraction of frames
// needing any fill, and the longest consecutive run of them. It also
// tracks the worst one-sided gap in source pixels, which later sizes the
// fill band.
//
// The budgets deliberately tolerate brief, small, rare fill (a single
// jolt) while refusing to mask sustained shake.
func EvaluateBudget(path *motion.Path, width, height int, rect crop.Rect,
	fs config.FillSettings) Stats {
	if rect.Empty() {
		return Stats{Pass: false, Reasons: []string{ReasonInvalidCrop}}
	}
	cx := float64(rect.X)
	cy := float64(rect.Y)
	cw := float64(rect.W)
	ch := float64(rect.H)
	area := cw * ch

	var stats Stats
	run := 0
	for _, t := range path.Frames() {
		if t.Missing || t.IsReference {
			continue
		}
		stats.TotalFrames++
		left, top, right, bottom := motion.ValidBBox(width, height, t.DX, t.DY)

		ix0 := max(cx, left)
		iy0 := max(cy, top)
		ix1 := min(cx+cw, right)
		iy1 := min(cy+ch, bottom)
		interArea := max(0, ix1-ix0) * max(0, iy1-iy0)
		fillArea := max(0, area-interArea)
		fillRatio := 1.0
		if area > 0 {
			fillRatio = fillArea / area
		}
		if fillRatio > stats.MaxFillAreaRatio {
			stats.MaxFillAreaRatio = fillRatio
		}
		if fillArea > 0 {
			stats.FramesWithFill++
			run++
			if run > stats.MaxConsecutiveFrames {
				stats.MaxConsecutiveFrames = run
			}
		} else {
			run = 0
		}

		gap := max(
			max(0, left-cx),
			max(0, (cx+cw)-right),
			max(0, top-cy),
			max(0, (cy+ch)-bottom),
		)
		if gap > stats.MaxGapPx {
			stats.MaxGapPx = gap
		}
	}

	stats.FramesRatio = 1.0
	if stats.TotalFrames > 0 {
		stats.FramesRatio = float64(stats.FramesWithFill) / float64(stats.TotalFrames)
	}

	if stats.MaxFillAreaRatio > fs.MaxAreaRatio {
		stats.Reasons = append(stats.Reasons, ReasonAreaExceeded)
	}
	if stats.FramesRatio > fs.MaxFramesRatio {
		stats.Reasons = append(stats.Reasons, ReasonFramesExceeded)
	}
	if stats.MaxConsecutiveFrames > fs.MaxConsecutiveFrames {
		stats.Reasons = append(stats.Reasons, ReasonConsecutiveExceeded)
	}
	stats.Pass = len(stats.Reasons) == 0
	return stats
}
