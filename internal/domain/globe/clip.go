package globe

import (
	"math"
)

// horizonStep is the angular spacing of points inserted along the horizon
// when a clipped polygon is closed.
const horizonStep = 5 * radians

// crossing returns the horizon point on the great-circle arc between a
// visible vertex a and a hidden vertex b.
func crossing(a, b vec3) vec3 {
	t := a.X / (a.X - b.X)
	y := a.Y + t*(b.Y-a.Y)
	z := a.Z + t*(b.Z-a.Z)
	n := math.Hypot(y, z)
	if n == 0 {
		return vec3{Y: 1}
	}
	return vec3{Y: y / n, Z: z / n}
}

// horizonAngle is the angle of v's radial projection onto the horizon.
func horizonAngle(v vec3) float64 { return math.Atan2(v.Z, v.Y) }

// ProjectLine projects an open (lng, lat) polyline, splitting it wherever it
// passes behind the globe.  Each visible run starts or ends on the horizon
// when it was cut there.
func (p Projection) ProjectLine(coords [][]float64) [][]Point {
	var (
		runs    [][]Point
		cur     []Point
		prev    vec3
		hasPrev bool
	)
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		v := p.rotate(c[0], c[1])
		vis := v.X > 0
		if hasPrev {
			prevVis := prev.X > 0
			switch {
			case prevVis && !vis:
				cur = append(cur, p.toScreen(crossing(prev, v)))
				runs = append(runs, cur)
				cur = nil
			case !prevVis && vis:
				cur = append(cur, p.toScreen(crossing(v, prev)))
			}
		}
		if vis {
			cur = append(cur, p.toScreen(v))
		}
		prev, hasPrev = v, true
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}

	out := runs[:0]
	for _, r := range runs {
		if len(r) >= 2 {
			out = append(out, r)
		}
	}
	return out
}

type clipArc struct {
	pts      []Point
	inAngle  float64
	outAngle float64
}

func dot(a, b vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// leftArea is the area of the region to the left of the closed ring vs,
// walking its geodesic edges: the signed spherical triangles fanned from the
// view centre, summed modulo 4π.  Degenerate spikes cancel out.
func leftArea(vs []vec3) float64 {
	sum := 0.0
	for i, a := range vs {
		b := vs[(i+1)%len(vs)]
		sum += 2 * math.Atan2(a.Y*b.Z-a.Z*b.Y, 1+a.X+b.X+dot(a, b))
	}
	sum = math.Mod(sum, 4*math.Pi)
	if sum < 0 {
		sum += 4 * math.Pi
	}
	return sum
}

// ProjectRing projects a closed (lng, lat) ring and clips it to the visible
// hemisphere.  The interior is the smaller of the two regions the ring
// bounds, so winding order does not matter.  Each visible stretch leaves the
// horizon and is joined to the next one along the stretch of horizon that
// runs through the interior; a ring that crosses the horizon several times
// may clip into several pieces.  Every piece is closed (first point
// repeated).  The result is nil when nothing of the ring is visible.
func (p Projection) ProjectRing(ring [][]float64) [][]Point {
	vs := make([]vec3, 0, len(ring))
	for _, c := range ring {
		if len(c) < 2 {
			continue
		}
		v := p.rotate(c[0], c[1])
		if len(vs) > 0 && vs[len(vs)-1] == v {
			continue
		}
		vs = append(vs, v)
	}
	if n := len(vs); n > 1 && vs[0] == vs[n-1] {
		vs = vs[:n-1]
	}
	n := len(vs)
	if n < 3 {
		return nil
	}

	start := -1
	for i, v := range vs {
		if v.X <= 0 {
			start = i
			break
		}
	}
	if start < 0 {
		pts := make([]Point, 0, n+1)
		for _, v := range vs {
			pts = append(pts, p.toScreen(v))
		}
		return [][]Point{append(pts, pts[0])}
	}

	var (
		arcs []clipArc
		cur  *clipArc
	)
	for k := 1; k <= n; k++ {
		a, b := vs[(start+k-1)%n], vs[(start+k)%n]
		aVis, bVis := a.X > 0, b.X > 0
		switch {
		case !aVis && bVis:
			c := crossing(b, a)
			cur = &clipArc{inAngle: horizonAngle(c), pts: []Point{p.toScreen(c), p.toScreen(b)}}
		case aVis && bVis:
			cur.pts = append(cur.pts, p.toScreen(b))
		case aVis && !bVis:
			c := crossing(a, b)
			cur.pts = append(cur.pts, p.toScreen(c))
			cur.outAngle = horizonAngle(c)
			arcs = append(arcs, *cur)
			cur = nil
		}
	}
	if len(arcs) == 0 {
		return nil
	}

	// Leaving the disc, the ring's left side lies counter-clockwise along
	// the horizon.
	dir := 1.0
	if leftArea(vs) > 2*math.Pi {
		dir = -1
	}
	next := func(from float64) (int, float64) {
		best, bestGap := 0, 2*math.Pi
		for i, arc := range arcs {
			gap := math.Mod(dir*(arc.inAngle-from), 2*math.Pi)
			if gap < 0 {
				gap += 2 * math.Pi
			}
			if gap < bestGap {
				best, bestGap = i, gap
			}
		}
		return best, dir * bestGap
	}

	var (
		rings [][]Point
		used  = make([]bool, len(arcs))
	)
	for i := range arcs {
		if used[i] {
			continue
		}
		var out []Point
		for j := i; !used[j]; {
			used[j] = true
			arc := arcs[j]
			out = append(out, arc.pts...)
			k, sweep := next(arc.outAngle)
			out = append(out, p.horizonArc(arc.outAngle, sweep)...)
			j = k
		}
		rings = append(rings, append(out, out[0]))
	}
	return rings
}

// horizonArc returns the interior points of the horizon arc starting at
// angle from and sweeping by sweep radians.
func (p Projection) horizonArc(from, sweep float64) []Point {
	steps := int(math.Ceil(math.Abs(sweep) / horizonStep))
	if steps < 2 {
		return nil
	}
	pts := make([]Point, 0, steps-1)
	for i := 1; i < steps; i++ {
		pts = append(pts, p.horizonPoint(from+sweep*float64(i)/float64(steps)))
	}
	return pts
}

// ProjectPolygon clips every ring of a polygon (exterior first, then holes)
// and drops rings that are entirely hidden.  Holes come back as separate
// rings, so the polygon must be filled with the even-odd rule.
func (p Projection) ProjectPolygon(polygon [][][]float64) [][]Point {
	var rings [][]Point
	for _, ring := range polygon {
		rings = append(rings, p.ProjectRing(ring)...)
	}
	return rings
}

// Graticule returns meridians and parallels every step degrees as (lng, lat)
// polylines sampled every 2.5°.  Meridians stop at ±80° except those on
// multiples of 90°, which run pole to pole.
func Graticule(step float64) [][][]float64 {
	if step <= 0 {
		step = 10
	}
	const precision = 2.5
	var lines [][][]float64

	for lng := -180.0; lng < 180; lng += step {
		extent := 80.0
		if math.Mod(lng, 90) == 0 {
			extent = 90
		}
		var line [][]float64
		for lat := -extent; lat <= extent+1e-9; lat += precision {
			line = append(line, []float64{lng, lat})
		}
		lines = append(lines, line)
	}
	for lat := -80.0; lat <= 80+1e-9; lat += step {
		var line [][]float64
		for lng := -180.0; lng <= 180+1e-9; lng += precision {
			line = append(line, []float64{lng, lat})
		}
		lines = append(lines, line)
	}
	return lines
}

// Graticule10 is Graticule(10).
func Graticule10() [][][]float64 { return Graticule(10) }

//Personal.AI order the ending
