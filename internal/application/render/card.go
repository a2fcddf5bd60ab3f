package render

import (
	"strings"
	"unicode/utf8"
)

const (
	cardWidth       = 320.0
	cardMargin      = 16.0
	descriptionWrap = 48
	maxDescLines    = 3
)

// cardGroup draws a card in the bottom-left corner of the frame.
func cardGroup(c *Card, width, height float64) *Group {
	desc := wrapText(c.Description, descriptionWrap, maxDescLines)
	h := 76 + float64(len(desc))*14 + 24
	x := cardMargin
	y := height - h - cardMargin
	if y < cardMargin {
		y = cardMargin
	}
	if width < cardWidth+2*cardMargin {
		x = 0
	}

	g := &Group{Class: "card", Transform: translate(x, y)}
	g.Add(&Rect{Width: cardWidth, Height: h, RX: 12, Style: Style{Fill: TooltipFill, Stroke: TooltipStroke, StrokeWidth: 1}})

	textX := 20.0
	if c.Initials != "" {
		g.Add(
			&Circle{CX: 36, CY: 36, R: 20, Style: Style{Fill: CompanyFill, Stroke: CompanyStroke, StrokeWidth: 1.5}},
			&Text{X: 36, Y: 36, Content: c.Initials, Anchor: "middle", Baseline: "middle", FontSize: 12, FontWeight: "600", Style: Style{Fill: White}},
		)
		textX = 68
	}
	g.Add(&Text{X: textX, Y: 32, Content: c.Title, FontSize: 15, FontWeight: "600", Style: Style{Fill: White}})
	if c.Subtitle != "" {
		g.Add(&Text{X: textX, Y: 50, Content: c.Subtitle, FontSize: 11, Style: Style{Fill: MutedText}})
	}

	if len(desc) > 0 {
		spans := make([]Span, len(desc))
		for i, line := range desc {
			dy := "1.3em"
			if i == 0 {
				dy = "0"
			}
			spans[i] = Span{Dy: dy, Content: line}
		}
		g.Add(&Text{X: 20, Y: 80, Spans: spans, FontSize: 11, Style: Style{Fill: MutedText}})
	}

	bx := 20.0
	by := h - 30
	for _, b := range c.Badges {
		if b == "" {
			continue
		}
		w := float64(utf8.RuneCountInString(b))*6 + 16
		if bx+w > cardWidth-12 {
			break
		}
		g.Add(
			&Rect{X: bx, Y: by, Width: w, Height: 18, RX: 9, Style: Style{Fill: CompanyFill, Stroke: CompanyStrokeDim, StrokeWidth: 1}},
			&Text{X: bx + w/2, Y: by + 9, Content: b, Anchor: "middle", Baseline: "middle", FontSize: 10, Style: Style{Fill: White}},
		)
		bx += w + 6
	}
	return g
}

// wrapText breaks s on spaces into at most maxLines lines of roughly width
// runes.  Overflowing text is cut with an ellipsis.
func wrapText(s string, width, maxLines int) []string {
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(w) > width {
			lines = append(lines, string(cur))
			cur = nil
			if len(lines) == maxLines {
				last := []rune(lines[maxLines-1])
				if len(last) > width-1 {
					last = last[:width-1]
				}
				lines[maxLines-1] = string(last) + "…"
				return lines
			}
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

//Personal.AI order the ending
