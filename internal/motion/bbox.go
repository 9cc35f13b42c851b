package motion

// ValidBBox computes the source-space rectangle that remains populated in
// a frame after the stabilizer applies the inverse translation (-dx,-dy):
// the shifted frame extent intersected with the original extent.
//
// This is the single definition of per-frame valid geometry; both the crop
// solver and the fill planner build on it so the semantics cannot drift.
// Translation only: angle and zoom feed the reliability gate but not this
// geometry.
func ValidBBox(width, height int, dx, dy float64) (left, top, right, bottom float64) {
	shiftX := -dx
	shiftY := -dy
	left = max(0, shiftX)
	right = min(float64(width), float64(width)+shiftX)
	top = max(0, shiftY)
	bottom = min(float64(height), float64(height)+shiftY)
	return left, top, right, bottom
}
