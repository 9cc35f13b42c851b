package reliability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/motion"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
	assert.Equal(t, 7.0, Median([]float64{7}))
	assert.Panics(t, func() { Median(nil) })
}

func TestMAD(t *testing.T) {
	// Values 1..5: median 3, deviations {2,1,0,1,2}, MAD 1.
	assert.Equal(t, 1.0, MAD([]float64{1, 2, 3, 4, 5}))
	// Constant series has zero spread.
	assert.Equal(t, 0.0, MAD([]float64{4, 4, 4}))
	// A single wild outlier barely moves the MAD.
	assert.Equal(t, 1.0, MAD([]float64{1, 2, 3, 4, 1000}))
}

// buildPath makes a path of n frames with the given per-frame dx values;
// frame 0 is the reference.
func buildPath(dx []float64) *motion.Path {
	frames := make([]motion.FrameTransform, len(dx))
	for i := range frames {
		frames[i] = motion.FrameTransform{DX: dx[i], FieldsCount: -1}
	}
	frames[0].IsReference = true
	return motion.NewPath(frames)
}

func defaultRejection() config.RejectionSettings {
	return config.DefaultSettings().Rejection
}

func TestClassify_SteadyPathPasses(t *testing.T) {
	dx := make([]float64, 100)
	for i := range dx {
		dx[i] = float64(i%5) - 2
	}
	v := Classify(buildPath(dx), 1920, 1080, defaultRejection())
	require.True(t, v.OK, "reasons: %v", v.Reasons)
	assert.Zero(t, v.Stats.MissingFraction)
	assert.Less(t, v.Stats.MADTXFraction, 0.01)
}

func TestClassify_AllMissingRejects(t *testing.T) {
	frames := make([]motion.FrameTransform, 10)
	for i := range frames {
		frames[i] = motion.FrameTransform{Missing: true, FieldsCount: -1}
	}
	// Even the reference missing: zero valid frames.
	v := Classify(motion.NewPath(frames), 1920, 1080, defaultRejection())
	require.False(t, v.OK)
	assert.Equal(t, []string{ReasonMissing}, v.Reasons)
}

func TestClassify_MissingFractionThreshold(t *testing.T) {
	frames := make([]motion.FrameTransform, 100)
	for i := range frames {
		frames[i] = motion.FrameTransform{FieldsCount: -1}
		if i >= 90 {
			frames[i].Missing = true
		}
	}
	frames[0].IsReference = true
	v := Classify(motion.NewPath(frames), 1920, 1080, defaultRejection())
	require.False(t, v.OK)
	assert.Contains(t, v.Reasons, ReasonMissing)
	// 10 of 99 non-reference frames.
	assert.InDelta(t, 10.0/99.0, v.Stats.MissingFraction, 1e-9)
}

func TestClassify_MADRejectsWildTranslation(t *testing.T) {
	// Alternating full-frame swings: MAD(dx)/width is enormous.
	dx := make([]float64, 60)
	for i := range dx {
		if i%2 == 0 {
			dx[i] = 1900
		} else {
			dx[i] = -1900
		}
	}
	v := Classify(buildPath(dx), 1920, 1080, defaultRejection())
	require.False(t, v.OK)
	assert.Contains(t, v.Reasons, ReasonMAD)
}

func TestClassify_MaxModeSingleOutlierRejects(t *testing.T) {
	frames := make([]motion.FrameTransform, 50)
	for i := range frames {
		frames[i] = motion.FrameTransform{FieldsCount: -1}
	}
	frames[0].IsReference = true
	frames[25].Angle = 1.2 // far past max_abs_angle_rad

	rj := defaultRejection()
	rj.Mode = config.RejectionMax
	v := Classify(motion.NewPath(frames), 1920, 1080, rj)
	require.False(t, v.OK)
	assert.Equal(t, []string{ReasonAngle}, v.Reasons)
	assert.Equal(t, 25, v.Stats.MaxAbsAngleFrame)
}

func TestClassify_BudgetedModeToleratesSingleOutlier(t *testing.T) {
	frames := make([]motion.FrameTransform, 50)
	for i := range frames {
		frames[i] = motion.FrameTransform{FieldsCount: -1}
	}
	frames[0].IsReference = true
	frames[25].Angle = 1.2

	rj := defaultRejection()
	rj.Mode = config.RejectionBudgeted
	rj.OutlierMaxFramesRatio = 0.05
	rj.OutlierMaxConsecutiveFrames = 3
	v := Classify(motion.NewPath(frames), 1920, 1080, rj)
	assert.True(t, v.OK, "one outlier in 49 usable frames is within budget: %v", v.Reasons)
	assert.Equal(t, 1, v.Stats.AngleOutliers.BadFrames)
	assert.Equal(t, 1, v.Stats.AngleOutliers.MaxConsecutiveBadFrames)
}

func TestClassify_ZeroRatioBudgetRejectsSingleOutlier(t *testing.T) {
	// Same input as above: one bad frame in 49 usable. With the frames
	// ratio budget at zero, any outlier at all is over budget.
	frames := make([]motion.FrameTransform, 50)
	for i := range frames {
		frames[i] = motion.FrameTransform{FieldsCount: -1}
	}
	frames[0].IsReference = true
	frames[25].Angle = 1.2

	rj := defaultRejection()
	rj.Mode = config.RejectionBudgeted
	rj.OutlierMaxFramesRatio = 0
	rj.OutlierMaxConsecutiveFrames = 3
	v := Classify(motion.NewPath(frames), 1920, 1080, rj)
	require.False(t, v.OK)
	assert.Equal(t, []string{ReasonAngle}, v.Reasons)
	assert.InDelta(t, 1.0/49.0, v.Stats.AngleOutliers.BadFramesRatio, 1e-9)
}

func TestClassify_BudgetedModeRejectsLongRun(t *testing.T) {
	frames := make([]motion.FrameTransform, 50)
	for i := range frames {
		frames[i] = motion.FrameTransform{FieldsCount: -1}
	}
	frames[0].IsReference = true
	for i := 20; i < 30; i++ {
		frames[i].Angle = 1.2
	}

	rj := defaultRejection()
	rj.Mode = config.RejectionBudgeted
	rj.OutlierMaxFramesRatio = 0.5
	rj.OutlierMaxConsecutiveFrames = 3
	v := Classify(motion.NewPath(frames), 1920, 1080, rj)
	require.False(t, v.OK)
	assert.Contains(t, v.Reasons, ReasonAngle)
	assert.Equal(t, 10, v.Stats.AngleOutliers.MaxConsecutiveBadFrames)
}

func TestClassify_ScaleJumpBetweenAdjacentFrames(t *testing.T) {
	frames := make([]motion.FrameTransform, 10)
	for i := range frames {
		frames[i] = motion.FrameTransform{FieldsCount: -1}
	}
	frames[0].IsReference = true
	frames[5].ZoomPercent = 80 // scale 1.8 right after scale 1.0

	rj := defaultRejection()
	rj.Mode = config.RejectionMax
	v := Classify(motion.NewPath(frames), 1920, 1080, rj)
	require.False(t, v.OK)
	assert.Contains(t, v.Reasons, ReasonScale)
	assert.Contains(t, v.Reasons, ReasonZoom)
	assert.Equal(t, 5, v.Stats.MaxScaleJumpFrame)
	assert.InDelta(t, 0.8, v.Stats.MaxScaleJump, 1e-9)
}

func TestClassify_TopOffendersAreSorted(t *testing.T) {
	frames := make([]motion.FrameTransform, 20)
	for i := range frames {
		frames[i] = motion.FrameTransform{FieldsCount: -1}
	}
	frames[0].IsReference = true
	frames[3].Angle = 0.1
	frames[7].Angle = 0.3
	frames[11].Angle = -0.2

	v := Classify(motion.NewPath(frames), 1920, 1080, defaultRejection())
	require.True(t, v.OK)
	top := v.Stats.Top5AbsAngle
	require.GreaterOrEqual(t, len(top), 3)
	assert.Equal(t, 7, top[0].Frame)
	assert.InDelta(t, 0.3, top[0].Value, 1e-9)
	assert.Equal(t, 11, top[1].Frame)
	assert.Equal(t, 3, top[2].Frame)
}
