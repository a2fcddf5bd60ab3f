package sector

import "math"

const (
	MinZoom = 0.3
	MaxZoom = 3.0
)

// Viewport is the diagram's pan/zoom transform: screen = K·p + (X, Y).
type Viewport struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the untransformed viewport.
func Identity() Viewport { return Viewport{K: 1} }

// Pan translates by (dx, dy) screen pixels.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.X += dx
	v.Y += dy
	return v
}

// ZoomAt scales by factor about the screen point (px, py), which stays
// fixed.  The resulting scale is clamped to [MinZoom, MaxZoom].
func (v Viewport) ZoomAt(factor, px, py float64) Viewport {
	if v.K == 0 {
		v.K = 1
	}
	k := math.Max(MinZoom, math.Min(MaxZoom, v.K*factor))
	qx, qy := (px-v.X)/v.K, (py-v.Y)/v.K
	return Viewport{X: px - k*qx, Y: py - k*qy, K: k}
}

// WheelFactor converts a wheel delta to a zoom factor.
func WheelFactor(deltaY float64) float64 {
	return math.Pow(2, -deltaY*0.002)
}

// Apply maps a layout point to the screen.
func (v Viewport) Apply(x, y float64) (float64, float64) {
	return v.K*x + v.X, v.K*y + v.Y
}

// Invert maps a screen point back to layout space.
func (v Viewport) Invert(x, y float64) (float64, float64) {
	k := v.K
	if k == 0 {
		k = 1
	}
	return (x - v.X) / k, (y - v.Y) / k
}

//Personal.AI order the ending
