package render

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/ben-daghir/hercap/pkg/errors"
)

const svgNS = "http://www.w3.org/2000/svg"

// EncodeSVG writes the scene as a standalone SVG document.
func EncodeSVG(w io.Writer, s *Scene) error {
	if s == nil || s.Root == nil {
		return errors.New(errors.ErrCodeRenderFailed, "empty scene")
	}
	enc := xml.NewEncoder(w)
	e := &svgEncoder{enc: enc}

	e.open("svg",
		attr("xmlns", svgNS),
		attr("width", Num(s.Width)),
		attr("height", Num(s.Height)),
		attr("viewBox", "0 0 "+Num(s.Width)+" "+Num(s.Height)),
		attr("data-view", s.View),
	)
	if len(s.Gradients) > 0 {
		e.open("defs")
		for _, g := range s.Gradients {
			e.open("radialGradient", attr("id", g.ID), attr("cx", "50%"), attr("cy", "50%"), attr("r", "50%"))
			for _, stop := range g.Stops {
				e.leaf("stop", attr("offset", stop.Offset), attr("stop-color", stop.Color))
			}
			e.close("radialGradient")
		}
		e.close("defs")
	}
	e.element(s.Root)
	e.close("svg")

	if e.err != nil {
		return errors.Wrap(e.err, errors.ErrCodeRenderFailed, "svg encoding failed")
	}
	if err := enc.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeRenderFailed, "svg encoding failed")
	}
	return nil
}

// SVG renders the scene to a byte slice.
func SVG(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeSVG(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type svgEncoder struct {
	enc *xml.Encoder
	err error
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func (e *svgEncoder) token(t xml.Token) {
	if e.err != nil {
		return
	}
	e.err = e.enc.EncodeToken(t)
}

func (e *svgEncoder) open(name string, attrs ...xml.Attr) {
	e.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (e *svgEncoder) close(name string) {
	e.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (e *svgEncoder) leaf(name string, attrs ...xml.Attr) {
	e.open(name, attrs...)
	e.close(name)
}

func (e *svgEncoder) element(el Element) {
	switch v := el.(type) {
	case *Group:
		attrs := optional(nil, "id", v.ID)
		attrs = optional(attrs, "class", v.Class)
		attrs = optional(attrs, "transform", v.Transform)
		e.open("g", styleAttrs(attrs, v.Style)...)
		for _, c := range v.Children {
			e.element(c)
		}
		e.close("g")
	case *Circle:
		e.leaf("circle", styleAttrs([]xml.Attr{
			attr("cx", Num(v.CX)), attr("cy", Num(v.CY)), attr("r", Num(v.R)),
		}, v.Style)...)
	case *Rect:
		attrs := []xml.Attr{
			attr("x", Num(v.X)), attr("y", Num(v.Y)),
			attr("width", Num(v.Width)), attr("height", Num(v.Height)),
		}
		if v.RX > 0 {
			attrs = append(attrs, attr("rx", Num(v.RX)))
		}
		e.leaf("rect", styleAttrs(attrs, v.Style)...)
	case *Line:
		e.leaf("line", styleAttrs([]xml.Attr{
			attr("x1", Num(v.X1)), attr("y1", Num(v.Y1)), attr("x2", Num(v.X2)), attr("y2", Num(v.Y2)),
		}, v.Style)...)
	case *Path:
		e.leaf("path", styleAttrs([]xml.Attr{attr("d", v.D)}, v.Style)...)
	case *Text:
		attrs := []xml.Attr{attr("x", Num(v.X)), attr("y", Num(v.Y))}
		attrs = optional(attrs, "text-anchor", v.Anchor)
		attrs = optional(attrs, "dominant-baseline", v.Baseline)
		if v.FontSize > 0 {
			attrs = append(attrs, attr("font-size", Num(v.FontSize)))
		}
		attrs = optional(attrs, "font-weight", v.FontWeight)
		if v.LetterSpacing > 0 {
			attrs = append(attrs, attr("letter-spacing", Num(v.LetterSpacing)))
		}
		e.open("text", styleAttrs(attrs, v.Style)...)
		if len(v.Spans) > 0 {
			for _, sp := range v.Spans {
				e.open("tspan", attr("x", Num(v.X)), attr("dy", sp.Dy))
				e.token(xml.CharData(sp.Content))
				e.close("tspan")
			}
		} else {
			e.token(xml.CharData(v.Content))
		}
		e.close("text")
	}
}

func optional(attrs []xml.Attr, name, value string) []xml.Attr {
	if value == "" {
		return attrs
	}
	return append(attrs, attr(name, value))
}

func styleAttrs(attrs []xml.Attr, s Style) []xml.Attr {
	attrs = optional(attrs, "fill", s.Fill)
	attrs = optional(attrs, "fill-rule", s.FillRule)
	attrs = optional(attrs, "stroke", s.Stroke)
	if s.StrokeWidth > 0 {
		attrs = append(attrs, attr("stroke-width", Num(s.StrokeWidth)))
	}
	if s.Opacity > 0 {
		attrs = append(attrs, attr("opacity", Num(s.Opacity)))
	}
	attrs = optional(attrs, "filter", s.Filter)
	attrs = optional(attrs, "pointer-events", s.PointerEvents)
	return attrs
}

//Personal.AI order the ending
