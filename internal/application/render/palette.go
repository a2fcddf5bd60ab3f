package render

import (
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/domain/sector"
)

// Globe palette.
const (
	OceanInner     = "rgb(30, 58, 95)"
	OceanOuter     = "rgb(15, 23, 42)"
	GraticuleColor = "rgba(100, 116, 139, 0.2)"
	LandFill       = "rgb(71, 85, 105)"
	LandStroke     = "rgb(51, 65, 85)"
	MarkerColor    = "rgb(239, 68, 68)"
	BadgeText      = "rgb(2, 6, 23)"
	TooltipFill    = "rgba(15, 23, 42, 0.95)"
	TooltipStroke  = "rgb(71, 85, 105)"
	MutedText      = "rgb(148, 163, 184)"
	FaintText      = "rgb(100, 116, 139)"
	White          = "white"
)

// Sector palette.
const (
	HighlightPrimary   = "#22c55e"
	HighlightSecondary = "#f59e0b"
	HighlightTertiary  = "#8b5cf6"

	CategoryFill         = "rgba(30, 41, 59, 0.95)"
	CategoryFillSelected = "rgba(59, 130, 246, 0.3)"
	CategoryStroke       = "rgb(59, 130, 246)"
	CategoryStrokeActive = "rgb(96, 165, 250)"

	CompanyFill       = "rgb(30, 41, 59)"
	CompanyStroke     = "rgb(148, 163, 184)"
	CompanyFillDimmed = "rgb(20, 28, 40)"
	CompanyStrokeDim  = "rgb(71, 85, 105)"
	HoverStroke       = "rgb(59, 130, 246)"

	OwnerFill  = "rgba(15, 23, 42, 0.98)"
	OwnerRing  = "rgb(234, 179, 8)"
	OwnerLabel = "rgb(250, 204, 21)"
)

// Highlight returns the highlight colour for a connection strength.
func Highlight(s portfolio.Strength) string {
	switch s {
	case portfolio.StrengthPrimary:
		return HighlightPrimary
	case portfolio.StrengthSecondary:
		return HighlightSecondary
	default:
		return HighlightTertiary
	}
}

func highlightFill(s portfolio.Strength) string {
	switch s {
	case portfolio.StrengthPrimary:
		return "rgba(34, 197, 94, 0.25)"
	case portfolio.StrengthSecondary:
		return "rgba(245, 158, 11, 0.25)"
	default:
		return "rgba(139, 92, 246, 0.25)"
	}
}

// linkStyle styles the line between a company and one of its categories.
func linkStyle(sel sector.Selection, category string, s portfolio.Strength) Style {
	if sel.Active() {
		if sel.Category == category {
			w := 1.5
			if s == portfolio.StrengthPrimary {
				w = 2.5
			}
			return Style{Stroke: Highlight(s), StrokeWidth: w, Opacity: 0.8}
		}
		return Style{Stroke: "rgba(51, 65, 85, 0.15)", StrokeWidth: 0.5, Opacity: 0.3}
	}
	switch s {
	case portfolio.StrengthPrimary:
		return Style{Stroke: "rgba(59, 130, 246, 0.5)", StrokeWidth: 1.5, Opacity: 0.6}
	case portfolio.StrengthSecondary:
		return Style{Stroke: "rgba(148, 163, 184, 0.3)", StrokeWidth: 1, Opacity: 0.4}
	default:
		return Style{Stroke: "rgba(71, 85, 105, 0.2)", StrokeWidth: 0.5, Opacity: 0.3}
	}
}

// LegendItems lists the highlight colours in strength order.
func LegendItems() []LegendItem {
	return []LegendItem{
		{Label: "Primary", Color: HighlightPrimary},
		{Label: "Secondary", Color: HighlightSecondary},
		{Label: "Tertiary", Color: HighlightTertiary},
	}
}

//Personal.AI order the ending
