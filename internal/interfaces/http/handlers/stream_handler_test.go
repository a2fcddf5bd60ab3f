package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/application/interaction"
	"github.com/ben-daghir/hercap/pkg/errors"
)

type streamFixture struct {
	manager *interaction.Manager
	server  *httptest.Server
}

func newStreamFixture(t *testing.T, cfg StreamConfig) *streamFixture {
	t.Helper()
	m := newManager(t, readyService(t), 0)
	h := NewStreamHandler(m, cfg, nil)
	r := chi.NewRouter()
	r.Get("/sessions/{sessionID}/stream", h.Stream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &streamFixture{manager: m, server: srv}
}

func (f *streamFixture) url(id, query string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/sessions/" + id + "/stream" + query
}

func (f *streamFixture) dial(t *testing.T, id, query string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(f.url(id, query), nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) StreamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(StreamMessage) bool) StreamMessage {
	t.Helper()
	for i := 0; i < 50; i++ {
		if msg := readMessage(t, conn); match(msg) {
			return msg
		}
	}
	require.FailNow(t, "expected message never arrived")
	return StreamMessage{}
}

func TestStreamHandler_FramesFollowInput(t *testing.T) {
	f := newStreamFixture(t, StreamConfig{})
	s, err := f.manager.Create(context.Background(), "globe", 0, 0)
	require.NoError(t, err)
	conn := f.dial(t, s.ID(), "?format=json")

	first := readMessage(t, conn)
	assert.Equal(t, messageFrame, first.Type)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, "globe", first.View)
	require.NotNil(t, first.Scene)
	assert.Empty(t, first.SVG)

	require.NoError(t, conn.WriteJSON(interaction.Input{Type: interaction.InputZoomIn}))
	next := readUntil(t, conn, func(m StreamMessage) bool { return m.Type == messageFrame && m.Seq >= 2 })
	assert.Equal(t, "globe", next.View)
}

func TestStreamHandler_SVGByDefault(t *testing.T) {
	f := newStreamFixture(t, StreamConfig{})
	s, err := f.manager.Create(context.Background(), "sector", 0, 0)
	require.NoError(t, err)
	conn := f.dial(t, s.ID(), "")

	msg := readMessage(t, conn)
	assert.Nil(t, msg.Scene)
	assert.True(t, strings.HasPrefix(msg.SVG, "<svg"))
}

func TestStreamHandler_BadInputKeepsStreamOpen(t *testing.T) {
	f := newStreamFixture(t, StreamConfig{})
	s, err := f.manager.Create(context.Background(), "globe", 0, 0)
	require.NoError(t, err)
	conn := f.dial(t, s.ID(), "?format=json")
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg := readUntil(t, conn, func(m StreamMessage) bool { return m.Type == messageError })
	require.NotNil(t, msg.Error)
	assert.Equal(t, string(errors.ErrCodeEventInvalid), msg.Error.Code)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "teleport"}))
	msg = readUntil(t, conn, func(m StreamMessage) bool { return m.Type == messageError })
	assert.Equal(t, string(errors.ErrCodeEventInvalid), msg.Error.Code)

	require.NoError(t, conn.WriteJSON(interaction.Input{Type: interaction.InputZoomIn}))
	readUntil(t, conn, func(m StreamMessage) bool { return m.Type == messageFrame && m.Seq >= 2 })
}

func TestStreamHandler_SessionCloseEndsStream(t *testing.T) {
	f := newStreamFixture(t, StreamConfig{})
	s, err := f.manager.Create(context.Background(), "globe", 0, 0)
	require.NoError(t, err)
	conn := f.dial(t, s.ID(), "?format=json")
	readMessage(t, conn)

	require.NoError(t, f.manager.Close(s.ID()))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, _, err = conn.ReadMessage()
		if err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err.Error())
}

func TestStreamHandler_DisconnectMidDragReleasesPointer(t *testing.T) {
	f := newStreamFixture(t, StreamConfig{})
	ctx := context.Background()
	s, err := f.manager.Create(ctx, "globe", 0, 0)
	require.NoError(t, err)
	conn := f.dial(t, s.ID(), "?format=json")
	readMessage(t, conn)

	// A slow drag, so the release leaves no momentum behind.
	start := time.Now()
	require.NoError(t, conn.WriteJSON(interaction.Input{Type: interaction.InputPointerDown, X: 300, Y: 300, At: start}))
	require.NoError(t, conn.WriteJSON(interaction.Input{Type: interaction.InputPointerMove, X: 340, Y: 300, At: start.Add(time.Minute)}))
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return s.Subscribers() == 0 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Sync(ctx))
	before, err := s.Snapshot(ctx)
	require.NoError(t, err)

	// With the pointer released this is a hover off the globe, not a drag.
	require.NoError(t, s.Send(ctx, interaction.Input{Type: interaction.InputPointerMove, X: 5, Y: 5, At: start.Add(2 * time.Minute)}))
	require.NoError(t, s.Sync(ctx))
	after, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Seq, after.Seq)
	assert.Equal(t, before.Scene, after.Scene)
}

func TestStreamHandler_RejectsBeforeUpgrade(t *testing.T) {
	f := newStreamFixture(t, StreamConfig{})
	_, resp, err := websocket.DefaultDialer.Dial(f.url("missing", ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	s, err := f.manager.Create(context.Background(), "globe", 0, 0)
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(f.url(s.ID(), "?format=gif"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStreamHandler_OriginCheck(t *testing.T) {
	f := newStreamFixture(t, StreamConfig{AllowedOrigins: []string{"https://app.example"}})
	s, err := f.manager.Create(context.Background(), "globe", 0, 0)
	require.NoError(t, err)

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(f.url(s.ID(), ""), header)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://APP.example")
	conn, resp, err := websocket.DefaultDialer.Dial(f.url(s.ID(), ""), header)
	require.NoError(t, err)
	resp.Body.Close()
	conn.Close()
}

func TestOriginChecker(t *testing.T) {
	assert.Nil(t, originChecker(nil))

	allowAll := originChecker([]string{"https://a.example", "*"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://b.example")
	assert.True(t, allowAll(req))

	exact := originChecker([]string{"https://a.example"})
	assert.False(t, exact(req))
	req.Header.Del("Origin")
	assert.True(t, exact(req), "non-browser clients send no origin")
}

//Personal.AI order the ending
