package render

import (
	"strconv"

	"github.com/ben-daghir/hercap/internal/domain/globe"
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/infrastructure/geometry"
)

const (
	ViewGlobe  = "globe"
	ViewSector = "sector"
)

// GlobeInput is everything the globe frame depends on.
type GlobeInput struct {
	State    globe.RotationState
	Width    float64
	Height   float64
	World    *geometry.World
	Clusters []globe.LocationCluster
	// Hover is the index of the hovered cluster, or -1.
	Hover    int
	Selected *portfolio.Company
}

// Globe builds the globe frame.  Layers are painted back to front:
// atmosphere, ocean, graticule, land, edge shadow, markers, then the hover
// tooltip and the detail card.
func Globe(in GlobeInput) *Scene {
	p := globe.NewProjection(in.State, in.Width, in.Height)
	c := p.Center()

	root := &Group{Class: "globe"}
	root.Add(
		&Circle{CX: c.X, CY: c.Y, R: in.State.Scale + 5, Style: Style{Fill: "url(#atmosphere)"}},
		&Circle{CX: c.X, CY: c.Y, R: in.State.Scale, Style: Style{Fill: "url(#ocean-gradient)"}},
	)

	var grid [][]globe.Point
	for _, line := range globe.Graticule10() {
		grid = append(grid, p.ProjectLine(line)...)
	}
	root.Add(&Path{D: PathData(grid, false), Style: Style{Fill: "none", Stroke: GraticuleColor, StrokeWidth: 0.5}})

	if !in.World.Empty() {
		land := &Group{Class: "land"}
		for _, poly := range in.World.Polygons {
			rings := p.ProjectPolygon(poly)
			if len(rings) == 0 {
				continue
			}
			land.Add(&Path{D: PathData(rings, true), Style: Style{Fill: LandFill, FillRule: "evenodd", Stroke: LandStroke, StrokeWidth: 0.5}})
		}
		root.Add(land)
	}

	root.Add(&Circle{CX: c.X, CY: c.Y, R: in.State.Scale, Style: Style{Fill: "url(#globe-shadow)", PointerEvents: "none"}})

	markers := &Group{Class: "markers"}
	var tooltip *Group
	for i := range in.Clusters {
		cl := &in.Clusters[i]
		pt, visible := p.Project(cl.Lng, cl.Lat)
		if !visible {
			continue
		}
		markers.Add(marker(cl, pt))
		if i == in.Hover {
			tooltip = clusterTooltip(cl, pt)
		}
	}
	root.Add(markers)
	if tooltip != nil {
		root.Add(tooltip)
	}

	scene := &Scene{
		View:   ViewGlobe,
		Width:  in.Width,
		Height: in.Height,
		Gradients: []RadialGradient{
			{ID: "ocean-gradient", Stops: []GradientStop{{"0%", OceanInner}, {"100%", OceanOuter}}},
			{ID: "globe-shadow", Stops: []GradientStop{{"85%", "transparent"}, {"100%", "rgba(0,0,0,0.3)"}}},
			{ID: "atmosphere", Stops: []GradientStop{{"80%", "transparent"}, {"90%", "rgba(56, 189, 248, 0.1)"}, {"100%", "rgba(56, 189, 248, 0.2)"}}},
		},
		Root: root,
	}
	if in.Selected != nil {
		scene.Card = CompanyCard(*in.Selected)
		root.Add(cardGroup(scene.Card, in.Width, in.Height))
	}
	return scene
}

func marker(cl *globe.LocationCluster, pt globe.Point) *Group {
	g := &Group{Class: "marker"}
	g.Add(
		&Circle{CX: pt.X, CY: pt.Y, R: globe.MarkerRadius, Style: Style{Fill: MarkerColor, Opacity: 0.6}},
		&Circle{CX: pt.X, CY: pt.Y, R: globe.MarkerRadius, Style: Style{Fill: MarkerColor, Stroke: White, StrokeWidth: 2}},
	)
	if n := len(cl.Companies); n > 1 {
		g.Add(
			&Circle{CX: pt.X + 10, CY: pt.Y - 10, R: 9, Style: Style{Fill: White, Stroke: MarkerColor, StrokeWidth: 1.5}},
			&Text{
				X: pt.X + 10, Y: pt.Y - 10, Content: strconv.Itoa(n),
				Anchor: "middle", Baseline: "middle", FontSize: 10, FontWeight: "bold",
				Style: Style{Fill: BadgeText},
			},
		)
	}
	return g
}

// clusterTooltip names the lead company and, for larger clusters, how many
// others share the location.
func clusterTooltip(cl *globe.LocationCluster, pt globe.Point) *Group {
	lead := cl.Lead()
	height := 45.0
	if len(cl.Companies) > 1 {
		height = 58
	}
	g := &Group{Class: "tooltip", Style: Style{PointerEvents: "none"}}
	g.Add(
		&Rect{X: pt.X + 18, Y: pt.Y - 35, Width: 170, Height: height, RX: 8, Style: Style{Fill: TooltipFill, Stroke: TooltipStroke, StrokeWidth: 1}},
		&Text{X: pt.X + 28, Y: pt.Y - 17, Content: lead.Name, FontSize: 13, FontWeight: "600", Style: Style{Fill: White}},
		&Text{X: pt.X + 28, Y: pt.Y - 2, Content: lead.Location, FontSize: 11, Style: Style{Fill: MutedText}},
	)
	if more := len(cl.Companies) - 1; more > 0 {
		g.Add(&Text{X: pt.X + 28, Y: pt.Y + 14, Content: MoreCompanies(more), FontSize: 10, Style: Style{Fill: FaintText}})
	}
	return g
}

// MoreCompanies is the tooltip line for the rest of a cluster.
func MoreCompanies(n int) string {
	return "+" + strconv.Itoa(n) + " more companies"
}

// CompanyCard is the globe's detail card: initials, name linked to the
// website, location, description and stage and sector badges.
func CompanyCard(c portfolio.Company) *Card {
	badges := []string{string(c.Stage), c.Primary}
	if c.Secondary != nil {
		badges = append(badges, *c.Secondary)
	}
	return &Card{
		Title:       c.Name,
		Subtitle:    c.Location,
		Description: c.Description,
		Link:        portfolio.Deref(c.Website),
		Initials:    c.Initials(),
		Badges:      badges,
	}
}

//Personal.AI order the ending
