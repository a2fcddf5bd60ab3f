package geometry

import (
	"encoding/json"
	"sort"

	geojson "github.com/paulmach/go.geojson"

	"github.com/ben-daghir/hercap/pkg/errors"
)

// topology is a TopoJSON document.  Only the parts needed to rebuild
// polygons are decoded.
type topology struct {
	Type      string                  `json:"type"`
	Transform *transform              `json:"transform"`
	Objects   map[string]topoGeometry `json:"objects"`
	Arcs      [][][]float64           `json:"arcs"`
}

type transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoGeometry struct {
	Type       string          `json:"type"`
	Arcs       json.RawMessage `json:"arcs"`
	Geometries []topoGeometry  `json:"geometries"`
}

// isTopology reports whether data is a TopoJSON document.
func isTopology(data []byte) bool {
	var head struct {
		Type string `json:"type"`
	}
	return json.Unmarshal(data, &head) == nil && head.Type == "Topology"
}

// landObject is the merged outline world-atlas ships next to its countries.
const landObject = "land"

// parseTopology decodes a topology into GeoJSON geometries.  When a land
// object is present only that one is read, since the other objects cover the
// same ground and overlapping rings cancel under even-odd fill.  Otherwise
// every object is read in name order.
func parseTopology(data []byte) ([]*geojson.Geometry, error) {
	var topo topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGeometryInvalid, "invalid world topology")
	}
	arcs := topo.decodeArcs()

	var names []string
	if _, ok := topo.Objects[landObject]; ok {
		names = []string{landObject}
	} else {
		for name := range topo.Objects {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	var out []*geojson.Geometry
	for _, name := range names {
		g, err := topo.Objects[name].toGeoJSON(arcs)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeGeometryInvalid, "invalid world topology").WithDetail(name)
		}
		if g != nil {
			out = append(out, g)
		}
	}
	return out, nil
}

// decodeArcs resolves quantized, delta-encoded arcs to absolute positions.
func (t *topology) decodeArcs() [][][]float64 {
	arcs := make([][][]float64, len(t.Arcs))
	for i, arc := range t.Arcs {
		pts := make([][]float64, len(arc))
		var x, y float64
		for j, p := range arc {
			if len(p) < 2 {
				pts[j] = []float64{x, y}
				continue
			}
			if t.Transform == nil {
				pts[j] = []float64{p[0], p[1]}
				continue
			}
			x += p[0]
			y += p[1]
			pts[j] = []float64{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			}
		}
		arcs[i] = pts
	}
	return arcs
}

func (g topoGeometry) toGeoJSON(arcs [][][]float64) (*geojson.Geometry, error) {
	switch g.Type {
	case "Polygon":
		var refs [][]int
		if err := json.Unmarshal(g.Arcs, &refs); err != nil {
			return nil, err
		}
		poly, err := polygon(refs, arcs)
		if err != nil {
			return nil, err
		}
		return geojson.NewPolygonGeometry(poly), nil
	case "MultiPolygon":
		var refs [][][]int
		if err := json.Unmarshal(g.Arcs, &refs); err != nil {
			return nil, err
		}
		polys := make([][][][]float64, 0, len(refs))
		for _, r := range refs {
			poly, err := polygon(r, arcs)
			if err != nil {
				return nil, err
			}
			polys = append(polys, poly)
		}
		return geojson.NewMultiPolygonGeometry(polys...), nil
	case "GeometryCollection":
		var children []*geojson.Geometry
		for _, child := range g.Geometries {
			c, err := child.toGeoJSON(arcs)
			if err != nil {
				return nil, err
			}
			if c != nil {
				children = append(children, c)
			}
		}
		return geojson.NewCollectionGeometry(children...), nil
	}
	return nil, nil
}

func polygon(refs [][]int, arcs [][][]float64) ([][][]float64, error) {
	rings := make([][][]float64, 0, len(refs))
	for _, r := range refs {
		ring, err := stitch(r, arcs)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

// stitch joins the referenced arcs into one ring.  A negative reference ~i
// is arc i reversed; consecutive arcs share their joining point.
func stitch(refs []int, arcs [][][]float64) ([][]float64, error) {
	var ring [][]float64
	for _, ref := range refs {
		idx, reverse := ref, false
		if ref < 0 {
			idx, reverse = ^ref, true
		}
		if idx >= len(arcs) {
			return nil, errors.New(errors.ErrCodeGeometryInvalid, "arc index out of range")
		}
		arc := arcs[idx]
		for k := range arc {
			p := arc[k]
			if reverse {
				p = arc[len(arc)-1-k]
			}
			if k == 0 && len(ring) > 0 {
				continue
			}
			ring = append(ring, p)
		}
	}
	return ring, nil
}

//Personal.AI order the ending
