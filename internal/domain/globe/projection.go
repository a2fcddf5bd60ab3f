package globe

import (
	"math"
)

const (
	degrees = 180 / math.Pi
	radians = math.Pi / 180
)

// Point is a screen position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projection is an orthographic projection of the sphere onto the viewport,
// clipped at 90° from the view centre.  Rotation follows the (λ, φ) camera
// convention of RotationState.
type Projection struct {
	Rotation [2]float64
	Scale    float64
	Width    float64
	Height   float64
}

// NewProjection builds the projection for a camera and viewport.
func NewProjection(s RotationState, width, height float64) Projection {
	return Projection{Rotation: s.Rotation, Scale: s.Scale, Width: width, Height: height}
}

// Center returns the screen position of the globe's centre.
func (p Projection) Center() Point {
	return Point{X: p.Width / 2, Y: p.Height / 2}
}

// vec3 is a unit vector after rotation: X points at the viewer, Y to the
// right and Z up.
type vec3 struct{ X, Y, Z float64 }

// rotate maps (lng, lat) in degrees to a rotated unit vector.
func (p Projection) rotate(lng, lat float64) vec3 {
	lambda := (lng + p.Rotation[0]) * radians
	phi := lat * radians
	dPhi := p.Rotation[1] * radians

	cosPhi := math.Cos(phi)
	x := math.Cos(lambda) * cosPhi
	y := math.Sin(lambda) * cosPhi
	z := math.Sin(phi)

	cosD, sinD := math.Cos(dPhi), math.Sin(dPhi)
	return vec3{
		X: x*cosD - z*sinD,
		Y: y,
		Z: z*cosD + x*sinD,
	}
}

func (p Projection) toScreen(v vec3) Point {
	return Point{X: p.Width/2 + p.Scale*v.Y, Y: p.Height/2 - p.Scale*v.Z}
}

// Project returns the screen position of (lng, lat) and whether the point
// lies on the visible hemisphere.  Hidden points still get a position (their
// projection through the globe) so callers can decide what to do with them.
func (p Projection) Project(lng, lat float64) (Point, bool) {
	v := p.rotate(lng, lat)
	return p.toScreen(v), v.X > 0
}

// Visible reports whether (lng, lat) is less than 90° of arc from the view
// centre.
func (p Projection) Visible(lng, lat float64) bool {
	return p.rotate(lng, lat).X > 0
}

// Invert maps a screen position back to (lng, lat).  ok is false when the
// position falls outside the globe's disc.
func (p Projection) Invert(x, y float64) (lng, lat float64, ok bool) {
	if p.Scale <= 0 {
		return 0, 0, false
	}
	py := (x - p.Width/2) / p.Scale
	pz := (p.Height/2 - y) / p.Scale
	r2 := py*py + pz*pz
	if r2 > 1 {
		return 0, 0, false
	}
	px := math.Sqrt(1 - r2)

	dPhi := p.Rotation[1] * radians
	cosD, sinD := math.Cos(dPhi), math.Sin(dPhi)
	vx := px*cosD + pz*sinD
	vz := pz*cosD - px*sinD

	lng = NormalizeLongitude(math.Atan2(py, vx)*degrees - p.Rotation[0])
	lat = math.Asin(clamp(vz, -1, 1)) * degrees
	return lng, lat, true
}

// Horizon returns the globe outline as a closed polyline of n points.
func (p Projection) Horizon(n int) []Point {
	if n < 3 {
		n = 3
	}
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, p.horizonPoint(2*math.Pi*float64(i)/float64(n)))
	}
	return pts
}

// horizonPoint returns the screen point at angle theta on the horizon,
// measured counter-clockwise from the right.
func (p Projection) horizonPoint(theta float64) Point {
	return p.toScreen(vec3{Y: math.Cos(theta), Z: math.Sin(theta)})
}

//Personal.AI order the ending
