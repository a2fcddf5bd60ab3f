// Package render turns globe and sector view state into a declarative scene
// of SVG primitives.  Scenes are pure values: building one never mutates the
// state it was built from, and the same state always yields the same scene.
package render

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ben-daghir/hercap/internal/domain/globe"
)

// Element is one drawable primitive.
type Element interface {
	Kind() string
}

// Style carries the paint attributes shared by every primitive.  Zero values
// are omitted from the output, so a zero Opacity renders fully opaque.
type Style struct {
	Fill          string  `json:"fill,omitempty"`
	FillRule      string  `json:"fill_rule,omitempty"`
	Stroke        string  `json:"stroke,omitempty"`
	StrokeWidth   float64 `json:"stroke_width,omitempty"`
	Opacity       float64 `json:"opacity,omitempty"`
	Filter        string  `json:"filter,omitempty"`
	PointerEvents string  `json:"pointer_events,omitempty"`
}

type Circle struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	R  float64 `json:"r"`
	Style
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	RX     float64 `json:"rx,omitempty"`
	Style
}

type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
	Style
}

type Path struct {
	D string `json:"d"`
	Style
}

// Span is one line of a multi-line label, offset from the previous line by Dy.
type Span struct {
	Dy      string `json:"dy"`
	Content string `json:"content"`
}

type Text struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Content       string  `json:"content,omitempty"`
	Spans         []Span  `json:"spans,omitempty"`
	Anchor        string  `json:"anchor,omitempty"`
	Baseline      string  `json:"baseline,omitempty"`
	FontSize      float64 `json:"font_size,omitempty"`
	FontWeight    string  `json:"font_weight,omitempty"`
	LetterSpacing float64 `json:"letter_spacing,omitempty"`
	Style
}

// Group nests elements under an optional transform.
type Group struct {
	ID        string    `json:"id,omitempty"`
	Class     string    `json:"class,omitempty"`
	Transform string    `json:"transform,omitempty"`
	Children  []Element `json:"children"`
	Style
}

func (*Circle) Kind() string { return "circle" }
func (*Rect) Kind() string   { return "rect" }
func (*Line) Kind() string   { return "line" }
func (*Path) Kind() string   { return "path" }
func (*Text) Kind() string   { return "text" }
func (*Group) Kind() string  { return "g" }

// Add appends children and returns the group.
func (g *Group) Add(children ...Element) *Group {
	g.Children = append(g.Children, children...)
	return g
}

// MarshalJSON tags every child with its kind so clients can rebuild the tree.
func (g *Group) MarshalJSON() ([]byte, error) {
	children := make([]json.RawMessage, 0, len(g.Children))
	for _, c := range g.Children {
		raw, err := marshalElement(c)
		if err != nil {
			return nil, err
		}
		children = append(children, raw)
	}
	type plain struct {
		ID        string `json:"id,omitempty"`
		Class     string `json:"class,omitempty"`
		Transform string `json:"transform,omitempty"`
		Style
		Children []json.RawMessage `json:"children"`
	}
	return json.Marshal(plain{ID: g.ID, Class: g.Class, Transform: g.Transform, Style: g.Style, Children: children})
}

func marshalElement(e Element) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	kind, _ := json.Marshal(e.Kind())
	if len(body) <= 2 {
		return []byte(`{"type":` + string(kind) + `}`), nil
	}
	return []byte(`{"type":` + string(kind) + `,` + string(body[1:])), nil
}

// GradientStop is one colour stop of a radial gradient.
type GradientStop struct {
	Offset string `json:"offset"`
	Color  string `json:"color"`
}

type RadialGradient struct {
	ID    string         `json:"id"`
	Stops []GradientStop `json:"stops"`
}

// Card is a detail card or tooltip.  It is drawn into the scene and also
// exposed as data for clients that render their own chrome.
type Card struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty"`
	Initials    string   `json:"initials,omitempty"`
	Badges      []string `json:"badges,omitempty"`
}

// LegendItem is one coloured entry of the sector legend.
type LegendItem struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

type Legend struct {
	Title string       `json:"title"`
	Items []LegendItem `json:"items"`
	Clear bool         `json:"clear"`
}

// Scene is a complete frame for one view.
type Scene struct {
	View      string           `json:"view"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Gradients []RadialGradient `json:"gradients,omitempty"`
	Root      *Group           `json:"root"`
	Card      *Card            `json:"card,omitempty"`
	Legend    *Legend          `json:"legend,omitempty"`
}

// Num formats a coordinate with at most two decimals.
func Num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PathData builds SVG path data from runs of points.  Closed runs end with Z.
func PathData(runs [][]globe.Point, closed bool) string {
	var b strings.Builder
	for _, run := range runs {
		if len(run) < 2 {
			continue
		}
		for i, pt := range run {
			if i == 0 {
				b.WriteByte('M')
			} else {
				b.WriteByte('L')
			}
			b.WriteString(Num(pt.X))
			b.WriteByte(',')
			b.WriteString(Num(pt.Y))
		}
		if closed {
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func translate(x, y float64) string {
	return "translate(" + Num(x) + "," + Num(y) + ")"
}

//Personal.AI order the ending
