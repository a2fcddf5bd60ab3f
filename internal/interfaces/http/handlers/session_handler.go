package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ben-daghir/hercap/internal/application/interaction"
	"github.com/ben-daghir/hercap/internal/application/render"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// maxInputsPerRequest bounds one input batch.
const maxInputsPerRequest = 256

// SessionHandler exposes interactive globe and sector sessions.
type SessionHandler struct {
	sessions *interaction.Manager
	factory  interaction.Factory
	logger   logging.Logger
	metrics  *prometheus.AppMetrics
}

// NewSessionHandler wires the handler.  factory serves the stateless
// render endpoint and should be the one the manager uses.
func NewSessionHandler(sessions *interaction.Manager, factory interaction.Factory, logger logging.Logger, metrics *prometheus.AppMetrics) *SessionHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	return &SessionHandler{sessions: sessions, factory: factory, logger: logger.Named("http.sessions"), metrics: metrics}
}

type CreateSessionRequest struct {
	View   string  `json:"view"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

type InputRequest struct {
	Inputs []interaction.Input `json:"inputs"`
}

type InputResponse struct {
	Accepted int `json:"accepted"`
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if req.Width < 0 || req.Height < 0 {
		writeAppError(w, h.logger, errors.InvalidParam("width and height must not be negative"))
		return
	}
	s, err := h.sessions.Create(r.Context(), req.View, req.Width, req.Height)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+s.ID())
	writeJSON(w, http.StatusCreated, interaction.SessionInfo{
		ID:         s.ID(),
		View:       s.View(),
		CreatedAt:  s.CreatedAt(),
		LastActive: s.LastActive(),
	})
}

// List handles GET /sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": h.sessions.List()})
}

// Delete handles DELETE /sessions/{sessionID}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sessionID")); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Input handles POST /sessions/{sessionID}/input.  The batch is applied in
// order before the response is written, so a following scene request sees
// its effect.
func (h *SessionHandler) Input(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	var req InputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if len(req.Inputs) > maxInputsPerRequest {
		writeAppError(w, h.logger, errors.InvalidParam("too many inputs").WithDetail("max="+strconv.Itoa(maxInputsPerRequest)))
		return
	}
	for _, in := range req.Inputs {
		if err := in.Validate(); err != nil {
			writeAppError(w, h.logger, err)
			return
		}
	}
	for _, in := range req.Inputs {
		if err := s.Send(r.Context(), in); err != nil {
			writeAppError(w, h.logger, err)
			return
		}
	}
	if err := s.Sync(r.Context()); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, InputResponse{Accepted: len(req.Inputs)})
}

// Scene handles GET /sessions/{sessionID}/scene?format=svg|json.
func (h *SessionHandler) Scene(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	format, err := parseFormat(r)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	f, err := s.Snapshot(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.Header().Set("X-Frame-Seq", strconv.FormatUint(f.Seq, 10))
	h.writeScene(w, format, f.View, f.Scene, f)
}

// Render handles GET /render/{view}: the view's initial scene without
// opening a session.
func (h *SessionHandler) Render(w http.ResponseWriter, r *http.Request) {
	format, err := parseFormat(r)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	width, err := queryFloat(r, "width")
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	height, err := queryFloat(r, "height")
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	view := chi.URLParam(r, "view")
	ctrl, err := h.factory(r.Context(), view, width, height)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	start := time.Now()
	scene := ctrl.Scene()
	prometheus.RecordRender(h.metrics, view, "scene", time.Since(start))
	h.writeScene(w, format, view, scene, scene)
}

func (h *SessionHandler) writeScene(w http.ResponseWriter, format, view string, scene *render.Scene, asJSON interface{}) {
	if format == formatJSON {
		writeJSON(w, http.StatusOK, asJSON)
		return
	}
	start := time.Now()
	body, err := render.SVG(scene)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	prometheus.RecordRender(h.metrics, view, formatSVG, time.Since(start))
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

const (
	formatSVG  = "svg"
	formatJSON = "json"
)

func parseFormat(r *http.Request) (string, error) {
	switch f := r.URL.Query().Get("format"); f {
	case "", formatSVG:
		return formatSVG, nil
	case formatJSON:
		return formatJSON, nil
	default:
		return "", errors.InvalidParam("unknown format").WithDetail(f)
	}
}

//Personal.AI order the ending
