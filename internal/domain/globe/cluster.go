package globe

import (
	"math"
	"strconv"

	"github.com/ben-daghir/hercap/internal/domain/portfolio"
)

// MarkerRadius is the screen radius of a location marker.
const MarkerRadius = 6.0

// LocationCluster is every company that resolves to one coordinate.
type LocationCluster struct {
	Lat       float64             `json:"lat"`
	Lng       float64             `json:"lng"`
	Companies []portfolio.Company `json:"companies"`
}

// Key identifies the cluster's coordinate.
func (c *LocationCluster) Key() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// Lead returns the cluster's first company, the one a marker click selects.
func (c *LocationCluster) Lead() portfolio.Company { return c.Companies[0] }

// Clusters groups companies by resolved coordinate.  Clusters appear in the
// order their first company appears, and companies keep feed order within a
// cluster.  Every company lands in exactly one cluster.
func Clusters(companies []portfolio.Company, table *portfolio.LocationTable) []LocationCluster {
	index := make(map[string]int)
	var out []LocationCluster
	for _, c := range companies {
		coord := table.Lookup(c.Location)
		cl := LocationCluster{Lat: coord.Lat, Lng: coord.Lng}
		key := cl.Key()
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, cl)
		}
		out[i].Companies = append(out[i].Companies, c)
	}
	return out
}

// HitTest returns the index of the visible cluster whose marker contains the
// screen point (x, y), enlarged by slop pixels.  Later clusters are drawn on
// top, so the last match wins.  It returns -1 when nothing is hit.
func HitTest(p Projection, clusters []LocationCluster, x, y, slop float64) int {
	hit := -1
	r := MarkerRadius + slop
	for i := range clusters {
		pt, visible := p.Project(clusters[i].Lng, clusters[i].Lat)
		if !visible {
			continue
		}
		if math.Hypot(pt.X-x, pt.Y-y) <= r {
			hit = i
		}
	}
	return hit
}

//Personal.AI order the ending
