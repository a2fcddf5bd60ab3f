package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ben-daghir/hercap/internal/application/interaction"
	"github.com/ben-daghir/hercap/internal/application/render"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// StreamConfig tunes the websocket frame stream.
type StreamConfig struct {
	// AllowedOrigins lists browser origins allowed to connect.  Empty means
	// same-origin only; "*" allows any origin.
	AllowedOrigins []string
	WriteTimeout   time.Duration
	PongWait       time.Duration
	// MaxMessageBytes bounds one client message.
	MaxMessageBytes int64
}

func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		WriteTimeout:    5 * time.Second,
		PongWait:        60 * time.Second,
		MaxMessageBytes: 4096,
	}
}

// StreamMessage is one server-to-client websocket message.
type StreamMessage struct {
	Type  string         `json:"type"`
	Seq   uint64         `json:"seq,omitempty"`
	View  string         `json:"view,omitempty"`
	Scene *render.Scene  `json:"scene,omitempty"`
	SVG   string         `json:"svg,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

const (
	messageFrame = "frame"
	messageError = "error"
)

// StreamHandler upgrades GET /sessions/{sessionID}/stream to a websocket.
// Clients send one Input per text message; the server pushes every
// rendered frame, dropping intermediate frames when the client lags.
type StreamHandler struct {
	sessions *interaction.Manager
	cfg      StreamConfig
	upgrader websocket.Upgrader
	logger   logging.Logger
}

func NewStreamHandler(sessions *interaction.Manager, cfg StreamConfig, logger logging.Logger) *StreamHandler {
	def := DefaultStreamConfig()
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = def.PongWait
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = def.MaxMessageBytes
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &StreamHandler{sessions: sessions, cfg: cfg, logger: logger.Named("http.stream")}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

// originChecker returns nil, gorilla's same-origin check, when no origins
// are configured.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[strings.ToLower(origin)]
	}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
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
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.logger.Debug("websocket upgrade failed", logging.Err(err))
		return
	}

	log := h.logger.With(logging.String("session_id", s.ID()))
	log.Debug("stream opened")

	frames, unsubscribe := s.Subscribe()
	ctx, cancel := context.WithCancel(r.Context())
	problems := make(chan error, 1)
	readDone := make(chan struct{})
	go h.readLoop(ctx, conn, s, problems, readDone)

	h.writeLoop(conn, format, frames, problems, readDone)

	cancel()
	unsubscribe()
	_ = conn.Close()
	<-readDone
	log.Debug("stream closed")
}

func (h *StreamHandler) writeLoop(conn *websocket.Conn, format string, frames <-chan interaction.Frame, problems <-chan error, readDone <-chan struct{}) {
	ping := time.NewTicker(h.cfg.PongWait * 9 / 10)
	defer ping.Stop()

	for {
		select {
		case f, ok := <-frames:
			if !ok {
				h.closeWith(conn, websocket.CloseGoingAway, "session closed")
				return
			}
			msg, err := frameMessage(f, format)
			if err != nil {
				msg = errorMessage(err)
			}
			if err := h.write(conn, msg); err != nil {
				return
			}
		case err := <-problems:
			if err := h.write(conn, errorMessage(err)); err != nil {
				return
			}
		case <-readDone:
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) readLoop(ctx context.Context, conn *websocket.Conn, s *interaction.Session, problems chan<- error, done chan<- struct{}) {
	defer close(done)
	defer h.releasePointer(s)
	conn.SetReadLimit(h.cfg.MaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var in interaction.Input
		if err := json.Unmarshal(data, &in); err != nil {
			err = errors.Wrap(err, errors.ErrCodeEventInvalid, "malformed input message")
			if !report(ctx, problems, err) {
				return
			}
			continue
		}
		if err := s.Send(ctx, in); err != nil {
			if errors.IsCode(err, errors.ErrCodeSessionClosed) || ctx.Err() != nil {
				return
			}
			if !report(ctx, problems, err) {
				return
			}
		}
	}
}

// releasePointer ends a drag the dropped connection left pressed.  The
// request context is gone by now, so the cancel gets its own deadline.
func (h *StreamHandler) releasePointer(s *interaction.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.WriteTimeout)
	defer cancel()
	err := s.Send(ctx, interaction.Input{Type: interaction.InputPointerCancel})
	if err != nil && !errors.IsCode(err, errors.ErrCodeSessionClosed) {
		h.logger.Debug("pointer release dropped", logging.String("session_id", s.ID()), logging.Err(err))
	}
}

// report hands err to the writer, giving up when the stream is ending.
func report(ctx context.Context, problems chan<- error, err error) bool {
	select {
	case problems <- err:
		return true
	case <-ctx.Done():
		return false
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
	return conn.WriteJSON(msg)
}

func (h *StreamHandler) closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(h.cfg.WriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}

func frameMessage(f interaction.Frame, format string) (StreamMessage, error) {
	msg := StreamMessage{Type: messageFrame, Seq: f.Seq, View: f.View}
	if format == formatJSON {
		msg.Scene = f.Scene
		return msg, nil
	}
	body, err := render.SVG(f.Scene)
	if err != nil {
		return StreamMessage{}, err
	}
	msg.SVG = string(body)
	return msg, nil
}

func errorMessage(err error) StreamMessage {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	resp := &ErrorResponse{Code: code.String(), Message: errors.DefaultMessageForCode(code)}
	if errors.IsClientError(code) {
		resp.Message = err.Error()
	}
	return StreamMessage{Type: messageError, Error: resp}
}

//Personal.AI order the ending
