package render

import (
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/domain/sector"
)

// SectorInput is everything the sector frame depends on.  Screen must be
// Layout mapped to the frame size.
type SectorInput struct {
	Layout     sector.Layout
	Screen     sector.Screen
	Viewport   sector.Viewport
	Selection  sector.Selection
	OwnerLabel string
	// Hover is the index of the hovered company node, or -1.
	Hover int
}

// Sector builds the sector frame.  Links, categories, companies and the
// owner node sit inside the viewport transform; the legend and hover card
// stay fixed.
func Sector(in SectorInput) *Scene {
	s := in.Screen
	v := in.Viewport
	if v.K == 0 {
		v = sector.Identity()
	}

	diagram := &Group{
		Class:     "diagram",
		Transform: "translate(" + Num(v.X) + "," + Num(v.Y) + ") scale(" + Num(v.K) + ")",
	}

	links := &Group{Class: "links"}
	for i, cn := range in.Layout.Companies {
		from := s.Companies[i]
		for _, ref := range cn.Company.Categories() {
			ci := categoryIndex(in.Layout, ref.Name)
			if ci < 0 {
				continue
			}
			to := s.Categories[ci]
			links.Add(&Line{X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y, Style: linkStyle(in.Selection, ref.Name, ref.Strength)})
		}
	}
	diagram.Add(links)

	categories := &Group{Class: "categories"}
	for i, cat := range in.Layout.Categories {
		categories.Add(categoryNode(cat, s.Categories[i], in.Selection.Category == cat.Name))
	}
	diagram.Add(categories)

	companies := &Group{Class: "companies"}
	for i, cn := range in.Layout.Companies {
		companies.Add(companyNode(cn.Company, s.Companies[i], in.Selection, i == in.Hover))
	}
	diagram.Add(companies)

	label := in.OwnerLabel
	if label == "" {
		label = "HerCap"
	}
	owner := &Group{Class: "owner", Transform: translate(s.Center.X, s.Center.Y)}
	owner.Add(
		&Circle{R: sector.OwnerNodeRadius, Style: Style{Fill: OwnerFill, Stroke: OwnerRing, StrokeWidth: 3}},
		&Text{Content: label, Anchor: "middle", Baseline: "middle", FontSize: 14, FontWeight: "700", LetterSpacing: 0.5, Style: Style{Fill: OwnerLabel, PointerEvents: "none"}},
	)
	diagram.Add(owner)

	legend := &Legend{Title: in.Selection.Legend(), Items: LegendItems(), Clear: in.Selection.Active()}
	root := &Group{Class: "sector"}
	root.Add(diagram, legendGroup(legend))

	scene := &Scene{View: ViewSector, Width: s.Width, Height: s.Height, Root: root, Legend: legend}
	if in.Hover >= 0 && in.Hover < len(in.Layout.Companies) {
		scene.Card = HoverCard(in.Layout.Companies[in.Hover].Company)
		root.Add(cardGroup(scene.Card, s.Width, s.Height))
	}
	return scene
}

func categoryIndex(l sector.Layout, name string) int {
	for i := range l.Categories {
		if l.Categories[i].Name == name {
			return i
		}
	}
	return -1
}

func categoryNode(cat sector.CategoryNode, at sector.ScreenNode, selected bool) *Group {
	fill, stroke, width := CategoryFill, CategoryStroke, 2.0
	if selected {
		fill, stroke, width = CategoryFillSelected, CategoryStrokeActive, 3
	}
	g := &Group{Class: "category", Transform: translate(at.X, at.Y)}
	g.Add(&Circle{R: sector.CategoryNodeRadius, Style: Style{Fill: fill, Stroke: stroke, StrokeWidth: width}})

	text := &Text{Anchor: "middle", Baseline: "middle", FontSize: 10, FontWeight: "600", Style: Style{Fill: White, PointerEvents: "none"}}
	lines := sector.WrapLabel(cat.Name)
	if len(lines) == 1 {
		text.Content = lines[0]
	} else {
		text.Spans = []Span{{Dy: "-0.35em", Content: lines[0]}, {Dy: "1.1em", Content: lines[1]}}
	}
	g.Add(text)
	return g
}

func companyNode(c portfolio.Company, at sector.ScreenNode, sel sector.Selection, hovered bool) *Group {
	style := Style{Fill: CompanyFill, Stroke: CompanyStroke, StrokeWidth: 1.5}
	textFill := White
	if sel.Active() {
		if st, ok := sel.Strength(c.ID); ok {
			style = Style{Fill: highlightFill(st), Stroke: Highlight(st), StrokeWidth: 2.5}
		} else {
			style = Style{Fill: CompanyFillDimmed, Stroke: CompanyStrokeDim, StrokeWidth: 1}
			textFill = FaintText
		}
	}
	if hovered {
		if _, ok := sel.Strength(c.ID); !ok {
			style.Stroke = HoverStroke
		}
		style.StrokeWidth = 2.5
	}

	g := &Group{Class: "company", Transform: translate(at.X, at.Y)}
	g.Add(
		&Circle{R: sector.CompanyNodeRadius, Style: style},
		&Text{Content: c.Initials(), Anchor: "middle", Baseline: "middle", FontSize: 10, FontWeight: "600", Style: Style{Fill: textFill, PointerEvents: "none"}},
	)
	return g
}

// HoverCard is the sector tooltip: name, description and category badges.
func HoverCard(c portfolio.Company) *Card {
	badges := []string{c.Primary}
	if c.Secondary != nil {
		badges = append(badges, *c.Secondary)
	}
	if c.Tertiary != nil {
		badges = append(badges, *c.Tertiary)
	}
	return &Card{Title: c.Name, Description: c.Description, Badges: badges}
}

func legendGroup(l *Legend) *Group {
	g := &Group{Class: "legend", Transform: translate(16, 16)}
	h := 78.0
	if l.Clear {
		h = 100
	}
	g.Add(
		&Rect{Width: 200, Height: h, RX: 8, Style: Style{Fill: TooltipFill, Stroke: TooltipStroke, StrokeWidth: 1}},
		&Text{X: 12, Y: 20, Content: l.Title, FontSize: 11, FontWeight: "600", Style: Style{Fill: White}},
	)
	for i, it := range l.Items {
		x := 12 + float64(i)*62
		g.Add(
			&Circle{CX: x + 5, CY: 46, R: 5, Style: Style{Fill: it.Color}},
			&Text{X: x + 14, Y: 46, Content: it.Label, Baseline: "middle", FontSize: 10, Style: Style{Fill: MutedText}},
		)
	}
	if l.Clear {
		g.Add(&Text{X: 12, Y: 84, Content: "Clear selection", FontSize: 10, Style: Style{Fill: CategoryStrokeActive}})
	}
	return g
}

//Personal.AI order the ending
