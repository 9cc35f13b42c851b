package crop

// Constraint reason strings. Stable: they appear verbatim in the report.
const (
	reasonEmpty        = "crop rectangle is empty"
	reasonExceedsFrame = "crop rectangle exceeds frame bounds"
	reasonOutOfBounds  = "crop rectangle is out of bounds"
	reasonArea         = "crop area below min_area_ratio"
	reasonHeight       = "crop height below min_height_px"
	reasonSafeLeftTop  = "crop does not include center safe region (left/top)"
	reasonSafeRightBot = "crop does not include center safe region (right/bottom)"
)

// boundsReasons checks structural validity only. A structurally invalid
// rect short-circuits the remaining checks.
func boundsReasons(width, height int, r Rect) []string {
	if r.Empty() {
		return []string{reasonEmpty}
	}
	if r.W > width || r.H > height {
		return []string{reasonExceedsFrame}
	}
	if r.X < 0 || r.Y < 0 || r.X+r.W > width || r.Y+r.H > height {
		return []string{reasonOutOfBounds}
	}
	return nil
}

// CheckBasic validates the rect against the area and height floors,
// without the center-safe requirement. Used when selecting the relaxed
// crop for the fill fallback.
func CheckBasic(width, height int, r Rect, minAreaRatio float64, minHeightPx int) (bool, []string) {
	if reasons := boundsReasons(width, height, r); reasons != nil {
		return false, reasons
	}
	var reasons []string
	if r.AreaRatio(width, height) < minAreaRatio {
		reasons = append(reasons, reasonArea)
	}
	if r.H < minHeightPx {
		reasons = append(reasons, reasonHeight)
	}
	return len(reasons) == 0, reasons
}

// Check validates the rect against all crop constraints: the basic floors
// plus full containment of the centered region inset by centerSafeMargin
// on every side, which guarantees the framed subject near center survives
// the crop.
func Check(width, height int, r Rect, minAreaRatio float64, minHeightPx int,
	centerSafeMargin float64) (bool, []string) {
	if reasons := boundsReasons(width, height, r); reasons != nil {
		return false, reasons
	}
	var reasons []string
	if r.AreaRatio(width, height) < minAreaRatio {
		reasons = append(reasons, reasonArea)
	}
	if r.H < minHeightPx {
		reasons = append(reasons, reasonHeight)
	}
	safeLeft := float64(width) * centerSafeMargin
	safeTop := float64(height) * centerSafeMargin
	safeRight := float64(width) - safeLeft
	safeBottom := float64(height) - safeTop
	if float64(r.X) > safeLeft || float64(r.Y) > safeTop {
		reasons = append(reasons, reasonSafeLeftTop)
	}
	if float64(r.X+r.W) < safeRight || float64(r.Y+r.H) < safeBottom {
		reasons = append(reasons, reasonSafeRightBot)
	}
	return len(reasons) == 0, reasons
}
