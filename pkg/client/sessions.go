package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Views accepted by Create and Render.
const (
	ViewGlobe  = "globe"
	ViewSector = "sector"
)

// MaxInputsPerRequest is the server's bound on one input batch.
const MaxInputsPerRequest = 256

// Session describes one open view session.
type Session struct {
	ID         string    `json:"id"`
	View       string    `json:"view"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// Input is one pointer event or command sent to a session.  Type is one of
// pointerdown, pointermove, pointerup, pointerleave, pointercancel, wheel,
// zoomin, zoomout, dismiss, resize or clear.
type Input struct {
	Type   string    `json:"type"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	DeltaY float64   `json:"delta_y,omitempty"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
	At     time.Time `json:"at,omitempty"`
}

// Frame is a session's latest rendered frame.  Scene is left raw so callers
// can decode only the parts they need.
type Frame struct {
	Seq   uint64          `json:"seq"`
	View  string          `json:"view"`
	At    time.Time       `json:"at"`
	Scene json.RawMessage `json:"scene"`
}

// SessionsClient drives interactive view sessions.
type SessionsClient struct {
	client *Client
}

// Create opens a session.  Zero width or height uses the server default.
func (sc *SessionsClient) Create(ctx context.Context, view string, width, height float64) (*Session, error) {
	if err := validateView(view); err != nil {
		return nil, err
	}
	if width < 0 || height < 0 {
		return nil, invalidArg("width and height must not be negative")
	}
	req := struct {
		View   string  `json:"view"`
		Width  float64 `json:"width,omitempty"`
		Height float64 `json:"height,omitempty"`
	}{view, width, height}
	var s Session
	if err := sc.client.post(ctx, "/api/v1/sessions", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (sc *SessionsClient) List(ctx context.Context) ([]Session, error) {
	var resp struct {
		Sessions []Session `json:"sessions"`
	}
	if err := sc.client.get(ctx, "/api/v1/sessions", &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (sc *SessionsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalidArg("session id is required")
	}
	return sc.client.delete(ctx, "/api/v1/sessions/"+url.PathEscape(id))
}

// Send queues inputs on the session and returns how many were accepted.
func (sc *SessionsClient) Send(ctx context.Context, id string, inputs ...Input) (int, error) {
	if id == "" {
		return 0, invalidArg("session id is required")
	}
	if len(inputs) == 0 {
		return 0, nil
	}
	if len(inputs) > MaxInputsPerRequest {
		return 0, invalidArg("too many inputs in one request")
	}
	req := struct {
		Inputs []Input `json:"inputs"`
	}{inputs}
	var resp struct {
		Accepted int `json:"accepted"`
	}
	if err := sc.client.post(ctx, "/api/v1/sessions/"+url.PathEscape(id)+"/input", req, &resp); err != nil {
		return 0, err
	}
	return resp.Accepted, nil
}

// Frame returns the session's current frame as JSON.
func (sc *SessionsClient) Frame(ctx context.Context, id string) (*Frame, error) {
	if id == "" {
		return nil, invalidArg("session id is required")
	}
	var f Frame
	if err := sc.client.get(ctx, "/api/v1/sessions/"+url.PathEscape(id)+"/scene?format=json", &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// SVG returns the session's current frame as an SVG document.
func (sc *SessionsClient) SVG(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, invalidArg("session id is required")
	}
	return sc.client.doRaw(ctx, http.MethodGet, "/api/v1/sessions/"+url.PathEscape(id)+"/scene", nil, "image/svg+xml")
}

// Render returns a view's initial frame as SVG without opening a session.
func (sc *SessionsClient) Render(ctx context.Context, view string, width, height float64) ([]byte, error) {
	if err := validateView(view); err != nil {
		return nil, err
	}
	v := url.Values{}
	if width > 0 {
		v.Set("width", strconv.FormatFloat(width, 'f', -1, 64))
	}
	if height > 0 {
		v.Set("height", strconv.FormatFloat(height, 'f', -1, 64))
	}
	path := "/api/v1/render/" + view
	if q := v.Encode(); q != "" {
		path += "?" + q
	}
	return sc.client.doRaw(ctx, http.MethodGet, path, nil, "image/svg+xml")
}

func validateView(view string) error {
	switch view {
	case ViewGlobe, ViewSector:
		return nil
	}
	return invalidArg("view must be globe or sector")
}

//Personal.AI order the ending
