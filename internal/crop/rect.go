// Package crop computes and validates the single static crop rectangle
// that stays fully populated across the whole motion path.
package crop

import "fmt"

// Rect is a crop rectangle in integer source pixels. The zero value
// (w=0,h=0) denotes infeasibility.
type Rect struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	W int `yaml:"w" json:"w"`
	H int `yaml:"h" json:"h"`
}

// Empty reports whether the rect denotes an infeasible crop.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Area returns the rect area in pixels.
func (r Rect) Area() int { return r.W * r.H }

// AreaRatio returns the rect area as a fraction of a width×height frame.
func (r Rect) AreaRatio(width, height int) float64 {
	return float64(r.W) * float64(r.H) / (float64(width) * float64(height))
}

// String formats the rect as "WxH+X+Y" for log output.
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}
