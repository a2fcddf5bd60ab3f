// Package interaction turns raw pointer input into gestures, applies them to
// per-view controllers, and runs each viewer session as a single goroutine
// that owns its view state and frame loop.
package interaction

import (
	"math"
	"time"

	"github.com/ben-daghir/hercap/pkg/errors"
)

// InputType names a client input.
type InputType string

const (
	InputPointerDown   InputType = "pointerdown"
	InputPointerMove   InputType = "pointermove"
	InputPointerUp     InputType = "pointerup"
	InputPointerLeave  InputType = "pointerleave"
	InputPointerCancel InputType = "pointercancel"
	InputWheel         InputType = "wheel"

	InputZoomIn  InputType = "zoomin"
	InputZoomOut InputType = "zoomout"
	InputDismiss InputType = "dismiss"
	InputResize  InputType = "resize"
	InputClear   InputType = "clear"
)

// Input is one client event.  X and Y are viewport pixels; DeltaY is the
// wheel delta; Width and Height are only read by resize.  At is stamped on
// receipt when the client leaves it zero.
type Input struct {
	Type   InputType `json:"type"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	DeltaY float64   `json:"delta_y,omitempty"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
	At     time.Time `json:"at,omitempty"`
}

// Validate rejects unknown input types and non-finite coordinates.
func (in Input) Validate() error {
	switch in.Type {
	case InputPointerDown, InputPointerMove, InputPointerUp, InputPointerLeave, InputPointerCancel, InputWheel,
		InputZoomIn, InputZoomOut, InputDismiss, InputClear:
	case InputResize:
		if in.Width <= 0 || in.Height <= 0 {
			return errors.New(errors.ErrCodeEventInvalid, "resize needs a positive width and height")
		}
	default:
		return errors.New(errors.ErrCodeEventInvalid, "unknown input type").WithDetail(string(in.Type))
	}
	for _, v := range []float64{in.X, in.Y, in.DeltaY, in.Width, in.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeEventInvalid, "non-finite input coordinate")
		}
	}
	return nil
}

// IsPointer reports whether the input goes through the gesture recognizer.
func (in Input) IsPointer() bool {
	switch in.Type {
	case InputPointerDown, InputPointerMove, InputPointerUp, InputPointerLeave, InputPointerCancel, InputWheel:
		return true
	}
	return false
}

// GestureKind classifies a recognised gesture.
type GestureKind int

const (
	GestureDragStart GestureKind = iota + 1
	GestureDragMove
	GestureDragEnd
	GestureClick
	GestureHover
	GestureHoverEnd
	GestureZoom
)

func (k GestureKind) String() string {
	switch k {
	case GestureDragStart:
		return "drag_start"
	case GestureDragMove:
		return "drag_move"
	case GestureDragEnd:
		return "drag_end"
	case GestureClick:
		return "click"
	case GestureHover:
		return "hover"
	case GestureHoverEnd:
		return "hover_end"
	case GestureZoom:
		return "zoom"
	default:
		return "unknown"
	}
}

// Gesture is a recognised pointer gesture.  DX and DY are the movement since
// the previous drag event and Elapsed the time between them.  Lost marks a
// drag that ended because the pointer left or was cancelled.
type Gesture struct {
	Kind    GestureKind
	X, Y    float64
	DX, DY  float64
	Elapsed time.Duration
	DeltaY  float64
	Lost    bool
}

// ClickSlop is how far the pointer may travel between press and release and
// still count as a click.
const ClickSlop = 3.0

// Recognizer turns a pointer input stream into gestures.  A press starts a
// drag immediately; a release that never strayed more than the slop from
// the press point also yields a click.  Not safe for concurrent use.
type Recognizer struct {
	slop float64

	pressed      bool
	startX       float64
	startY       float64
	lastX, lastY float64
	lastAt       time.Time
	travel       float64
}

func NewRecognizer(slop float64) *Recognizer {
	if slop <= 0 {
		slop = ClickSlop
	}
	return &Recognizer{slop: slop}
}

// Pressed reports whether a drag is in progress.
func (r *Recognizer) Pressed() bool { return r.pressed }

// Handle feeds one pointer input and returns the gestures it completes.
func (r *Recognizer) Handle(in Input) []Gesture {
	switch in.Type {
	case InputPointerDown:
		var out []Gesture
		if r.pressed {
			// The release was never seen.
			out = append(out, Gesture{Kind: GestureDragEnd, X: r.lastX, Y: r.lastY, Lost: true})
		}
		r.pressed = true
		r.startX, r.startY = in.X, in.Y
		r.lastX, r.lastY = in.X, in.Y
		r.lastAt = in.At
		r.travel = 0
		return append(out, Gesture{Kind: GestureDragStart, X: in.X, Y: in.Y})

	case InputPointerMove:
		if !r.pressed {
			return []Gesture{{Kind: GestureHover, X: in.X, Y: in.Y}}
		}
		g := Gesture{
			Kind:    GestureDragMove,
			X:       in.X,
			Y:       in.Y,
			DX:      in.X - r.lastX,
			DY:      in.Y - r.lastY,
			Elapsed: in.At.Sub(r.lastAt),
		}
		if g.Elapsed < 0 {
			g.Elapsed = 0
		}
		r.lastX, r.lastY = in.X, in.Y
		r.lastAt = in.At
		r.travel = math.Max(r.travel, math.Hypot(in.X-r.startX, in.Y-r.startY))
		return []Gesture{g}

	case InputPointerUp:
		if !r.pressed {
			return nil
		}
		r.pressed = false
		r.travel = math.Max(r.travel, math.Hypot(in.X-r.startX, in.Y-r.startY))
		out := []Gesture{{Kind: GestureDragEnd, X: in.X, Y: in.Y}}
		if r.travel <= r.slop {
			out = append(out, Gesture{Kind: GestureClick, X: r.startX, Y: r.startY})
		}
		return out

	case InputPointerLeave, InputPointerCancel:
		if r.pressed {
			r.pressed = false
			return []Gesture{{Kind: GestureDragEnd, X: r.lastX, Y: r.lastY, Lost: true}}
		}
		return []Gesture{{Kind: GestureHoverEnd}}

	case InputWheel:
		return []Gesture{{Kind: GestureZoom, X: in.X, Y: in.Y, DeltaY: in.DeltaY}}
	}
	return nil
}

//Personal.AI order the ending
