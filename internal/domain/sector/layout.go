// Package sector computes the category diagram: weighted category scores, the
// ring of category nodes, each company's weighted superposition between its
// categories, and the pan/zoom viewport and selection state that sit on top.
package sector

import (
	"math"
	"sort"

	"github.com/ben-daghir/hercap/internal/domain/portfolio"
)

const (
	// InnerRadius is the minimum distance from the centre, in unit-circle
	// terms, at which a company node is placed.
	InnerRadius = 0.4

	// MaxRadius caps the company ring radius in pixels.
	MaxRadius = 260.0
	// RadiusFactor is the company ring radius as a fraction of the smaller
	// viewport dimension.
	RadiusFactor = 0.38
	// CategoryRingFactor places category nodes just outside the company ring.
	CategoryRingFactor = 1.2

	CategoryNodeRadius = 40.0
	CompanyNodeRadius  = 20.0
	OwnerNodeRadius    = 48.0

	DefaultWidth  = 1000.0
	DefaultHeight = 600.0
)

// CategoryScore is a category's weighted score.  Units is the score in
// tenths (5 per primary, 4 per secondary, 1 per tertiary membership), which
// keeps ties exact.
type CategoryScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Units int     `json:"-"`
}

// Scores returns every distinct category with its weighted score, in
// first-seen order.
func Scores(companies []portfolio.Company) []CategoryScore {
	index := make(map[string]int)
	var out []CategoryScore
	for i := range companies {
		for _, ref := range companies[i].Categories() {
			j, ok := index[ref.Name]
			if !ok {
				j = len(out)
				index[ref.Name] = j
				out = append(out, CategoryScore{Name: ref.Name})
			}
			out[j].Units += int(math.Round(ref.Strength.Weight() * 10))
		}
	}
	for i := range out {
		out[i].Score = float64(out[i].Units) / 10
	}
	return out
}

// Ranked sorts scores by descending score; equal scores keep first-seen
// order.
func Ranked(scores []CategoryScore) []CategoryScore {
	ranked := make([]CategoryScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Units > ranked[j].Units })
	return ranked
}

// CategoryNode is a category placed on the unit circle.
type CategoryNode struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Angle float64 `json:"angle"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// CompanyNode is a company placed inside the unit circle.
type CompanyNode struct {
	Company portfolio.Company `json:"company"`
	X       float64           `json:"x"`
	Y       float64           `json:"y"`
}

// Layout is the resolution-independent diagram.  Category and company
// coordinates are in unit-circle space.
type Layout struct {
	Categories []CategoryNode `json:"categories"`
	Companies  []CompanyNode  `json:"companies"`

	index map[string]int
}

// Compute builds the layout.  Categories are ranked by score and spaced
// evenly clockwise from the top.  Each company sits at the weighted sum of
// its categories' positions, pushed out to InnerRadius when it would land
// closer to the centre.  A company whose weighted sum is exactly zero stays
// at the centre.
func Compute(companies []portfolio.Company) Layout {
	ranked := Ranked(Scores(companies))
	n := len(ranked)

	l := Layout{
		Categories: make([]CategoryNode, n),
		Companies:  make([]CompanyNode, 0, len(companies)),
		index:      make(map[string]int, n),
	}
	for i, cs := range ranked {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		l.Categories[i] = CategoryNode{
			Name:  cs.Name,
			Score: cs.Score,
			Angle: angle,
			X:     math.Cos(angle),
			Y:     math.Sin(angle),
		}
		l.index[cs.Name] = i
	}

	for _, c := range companies {
		var x, y float64
		for _, ref := range c.Categories() {
			cat := l.Categories[l.index[ref.Name]]
			w := ref.Strength.Weight()
			x += w * cat.X
			y += w * cat.Y
		}
		if d := math.Hypot(x, y); d > 0 && d < InnerRadius {
			f := InnerRadius / d
			x *= f
			y *= f
		}
		l.Companies = append(l.Companies, CompanyNode{Company: c, X: x, Y: y})
	}
	return l
}

// Category returns the node for name.
func (l Layout) Category(name string) (CategoryNode, bool) {
	i, ok := l.index[name]
	if !ok {
		return CategoryNode{}, false
	}
	return l.Categories[i], true
}

// ScreenNode is a node position in pixels, before the viewport transform.
type ScreenNode struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Screen is a Layout mapped to a viewport.  Categories and Companies are
// parallel to the Layout's slices.
type Screen struct {
	Width          float64      `json:"width"`
	Height         float64      `json:"height"`
	Center         ScreenNode   `json:"center"`
	Radius         float64      `json:"radius"`
	CategoryRadius float64      `json:"category_radius"`
	Categories     []ScreenNode `json:"categories"`
	Companies      []ScreenNode `json:"companies"`
}

// RingRadius returns the company ring radius for a viewport.
func RingRadius(width, height float64) float64 {
	return math.Min(math.Min(width, height)*RadiusFactor, MaxRadius)
}

// Screen maps the layout onto a width×height viewport.  Only the radius and
// centre depend on the viewport, so resizing never changes the ranking.
func (l Layout) Screen(width, height float64) Screen {
	r := RingRadius(width, height)
	s := Screen{
		Width:          width,
		Height:         height,
		Center:         ScreenNode{X: width / 2, Y: height / 2},
		Radius:         r,
		CategoryRadius: r * CategoryRingFactor,
		Categories:     make([]ScreenNode, len(l.Categories)),
		Companies:      make([]ScreenNode, len(l.Companies)),
	}
	for i, c := range l.Categories {
		s.Categories[i] = ScreenNode{X: s.Center.X + c.X*s.CategoryRadius, Y: s.Center.Y + c.Y*s.CategoryRadius}
	}
	for i, c := range l.Companies {
		s.Companies[i] = ScreenNode{X: s.Center.X + c.X*r, Y: s.Center.Y + c.Y*r}
	}
	return s
}

//Personal.AI order the ending
