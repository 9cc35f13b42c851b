package crop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/steadycrop/internal/motion"
)

func pathWithDX(dx []float64) *motion.Path {
	frames := make([]motion.FrameTransform, len(dx))
	for i := range frames {
		frames[i] = motion.FrameTransform{DX: dx[i], FieldsCount: -1}
	}
	frames[0].IsReference = true
	return motion.NewPath(frames)
}

func TestSolve_ZeroMotionKeepsFullFrame(t *testing.T) {
	p := pathWithDX(make([]float64, 50))
	r := Solve(p, 1920, 1080)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 1920, H: 1080}, r)
}

func TestSolve_SymmetricShiftShrinksBySpan(t *testing.T) {
	// dx swings between -5 and +5: each side loses 5px, width loses 10.
	dx := make([]float64, 100)
	for i := range dx {
		if i%2 == 0 {
			dx[i] = 5
		} else {
			dx[i] = -5
		}
	}
	p := pathWithDX(dx)
	r := Solve(p, 1920, 1080)
	require.False(t, r.Empty())
	assert.Equal(t, 1910, r.W)
	assert.Equal(t, 5, r.X)
	// Height follows the aspect ratio: 1910 * 1080/1920 = 1074.375 -> 1074.
	assert.Equal(t, 1074, r.H)
}

func TestSolve_AspectRatioPreserved(t *testing.T) {
	dx := []float64{0, 37.2, -12.9, 4.4, -25.1}
	r := Solve(pathWithDX(dx), 1920, 1080)
	require.False(t, r.Empty())
	srcAspect := 1920.0 / 1080.0
	cropAspect := float64(r.W) / float64(r.H)
	// Integer floors can only make the rect slightly wider than tall.
	assert.InDelta(t, srcAspect, cropAspect, 0.01)
	assert.LessOrEqual(t, r.X, 1920-r.W)
	assert.GreaterOrEqual(t, r.X, 0)
}

func TestSolve_MissingFramesContributeNothing(t *testing.T) {
	frames := []motion.FrameTransform{
		{IsReference: true, FieldsCount: -1},
		{DX: 5, FieldsCount: -1},
		{DX: 900, Missing: true, FieldsCount: -1},
		{DX: -5, FieldsCount: -1},
	}
	r := Solve(motion.NewPath(frames), 1920, 1080)
	require.False(t, r.Empty())
	// The missing frame's wild dx must not influence the intersection.
	assert.Equal(t, 1910, r.W)
}

func TestSolve_CollapsedIntersectionIsEmpty(t *testing.T) {
	dx := []float64{0, 1000, -1000}
	r := Solve(pathWithDX(dx), 1920, 1080)
	assert.True(t, r.Empty())
}

func TestSolve_FractionalShiftRoundsInward(t *testing.T) {
	dx := []float64{0, 0.3, -0.3}
	r := Solve(pathWithDX(dx), 1920, 1080)
	require.False(t, r.Empty())
	// left = 0.3 ceils to 1, right = 1919.7 floors to 1919.
	assert.Equal(t, 1, r.X)
	assert.LessOrEqual(t, r.W, 1918)
}

func TestMinimumCentered(t *testing.T) {
	// Height floor dominates: 702px tall, aspect-correct width 1248.
	r := MinimumCentered(1920, 1080, 0.25, 702)
	require.False(t, r.Empty())
	assert.Equal(t, 702, r.H)
	assert.Equal(t, 1248, r.W)
	assert.Equal(t, (1920-1248)/2, r.X)
	assert.Equal(t, (1080-702)/2, r.Y)

	// Area floor dominates when the height floor is small.
	r = MinimumCentered(1920, 1080, 0.81, 100)
	require.False(t, r.Empty())
	assert.GreaterOrEqual(t, r.AreaRatio(1920, 1080), 0.81)

	// Infeasible when the floor exceeds the frame.
	assert.True(t, MinimumCentered(1920, 1080, 0.25, 1200).Empty())
}

func TestCheck_FullConstraints(t *testing.T) {
	tests := []struct {
		name    string
		rect    Rect
		wantOK  bool
		reasons []string
	}{
		{"full frame passes", Rect{0, 0, 1920, 1080}, true, nil},
		{"empty rect", Rect{}, false, []string{"crop rectangle is empty"}},
		{"exceeds frame", Rect{0, 0, 2000, 1080}, false, []string{"crop rectangle exceeds frame bounds"}},
		{"out of bounds", Rect{1000, 0, 1200, 800}, false, []string{"crop rectangle is out of bounds"}},
		{"too small area and height", Rect{800, 500, 320, 180}, false, []string{
			"crop area below min_area_ratio",
			"crop height below min_height_px",
			"crop does not include center safe region (left/top)",
			"crop does not include center safe region (right/bottom)",
		}},
		{"misses safe region on the right", Rect{0, 0, 1700, 956}, false, []string{
			"crop does not include center safe region (right/bottom)",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reasons := Check(1920, 1080, tt.rect, 0.25, 702, 0.10)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.reasons, reasons)
		})
	}
}

func TestCheckBasic_IgnoresSafeRegion(t *testing.T) {
	// Offset rect that misses the centered safe region but meets the floors.
	r := Rect{X: 0, Y: 0, W: 1600, H: 900}
	ok, reasons := CheckBasic(1920, 1080, r, 0.25, 702)
	assert.True(t, ok, "reasons: %v", reasons)

	ok, _ = Check(1920, 1080, r, 0.25, 702, 0.10)
	assert.False(t, ok, "full check requires the safe region")
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 640, H: 360}
	assert.Equal(t, 640*360, r.Area())
	assert.InDelta(t, float64(640*360)/float64(1920*1080), r.AreaRatio(1920, 1080), 1e-12)
	assert.Equal(t, "640x360+10+20", r.String())
	assert.False(t, r.Empty())
	assert.True(t, Rect{W: 0, H: 100}.Empty())
}
