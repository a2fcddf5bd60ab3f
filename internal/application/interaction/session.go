package interaction

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ben-daghir/hercap/internal/application/engagement"
	"github.com/ben-daghir/hercap/internal/application/render"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
	"github.com/ben-daghir/hercap/pkg/errors"
)

var ErrSessionClosed = errors.New(errors.ErrCodeSessionClosed, "session closed")

const publishTimeout = 5 * time.Second

// Frame is one rendered scene.  Seq increases by one per frame within a
// session.
type Frame struct {
	Seq   uint64        `json:"seq"`
	View  string        `json:"view"`
	At    time.Time     `json:"at"`
	Scene *render.Scene `json:"scene"`
}

type inputMsg struct{ in Input }

type frameMsg struct {
	gen uint64
	now time.Time
}

type snapshotMsg struct{ reply chan Frame }

type syncMsg struct{ reply chan struct{} }

// Session runs one viewer's controller on its own goroutine.  Input, frame
// callbacks and snapshot requests are serialised through the inbox, so the
// controller never sees concurrent calls.  At most one frame is pending at
// a time; redraw requests between frames coalesce into it, and the
// animation loop reuses the same frame chain.
type Session struct {
	id        string
	view      string
	createdAt time.Time

	ctrl       Controller
	recognizer *Recognizer
	scheduler  Scheduler
	publisher  engagement.Publisher
	logger     logging.Logger
	metrics    *prometheus.AppMetrics
	clock      func() time.Time

	inbox     chan interface{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	inflight  sync.WaitGroup
	active    atomic.Int64

	subMu   sync.Mutex
	subs    map[int]chan Frame
	nextSub int
	closed  bool

	// Owned by the run goroutine.
	frame     FrameHandle
	frameGen  uint64
	dirty     bool
	animating bool
	lastTick  time.Time
	seq       uint64
	latest    Frame
}

type sessionDeps struct {
	scheduler Scheduler
	publisher engagement.Publisher
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
	clock     func() time.Time
	inboxSize int
}

func newSession(id string, ctrl Controller, deps sessionDeps) *Session {
	now := deps.clock()
	s := &Session{
		id:         id,
		view:       ctrl.View(),
		createdAt:  now,
		ctrl:       ctrl,
		recognizer: NewRecognizer(ClickSlop),
		scheduler:  deps.scheduler,
		publisher:  deps.publisher,
		logger:     deps.logger.With(logging.String("session_id", id), logging.String("view", ctrl.View())),
		metrics:    deps.metrics,
		clock:      deps.clock,
		inbox:      make(chan interface{}, deps.inboxSize),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		subs:       make(map[int]chan Frame),
	}
	s.active.Store(now.UnixNano())
	s.render(now)
	go s.run()
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) View() string         { return s.view }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActive is when input last arrived or a frame stream detached.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.active.Load())
}

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} { return s.stopped }

// Send queues one input.  It blocks while the inbox is full.
func (s *Session) Send(ctx context.Context, in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}
	now := s.clock()
	if in.At.IsZero() {
		in.At = now
	}
	s.active.Store(now.UnixNano())
	return s.post(ctx, inputMsg{in: in})
}

func (s *Session) post(ctx context.Context, msg interface{}) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.inbox <- msg:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current frame, rendering first when state changed
// since the last one.
func (s *Session) Snapshot(ctx context.Context) (Frame, error) {
	reply := make(chan Frame, 1)
	if err := s.post(ctx, snapshotMsg{reply: reply}); err != nil {
		return Frame{}, err
	}
	select {
	case f := <-reply:
		return f, nil
	case <-s.stopped:
		return Frame{}, ErrSessionClosed
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Sync waits until every input queued before the call has been handled.
func (s *Session) Sync(ctx context.Context) error {
	reply := make(chan struct{})
	if err := s.post(ctx, syncMsg{reply: reply}); err != nil {
		return err
	}
	select {
	case <-reply:
		return nil
	case <-s.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel that receives frames as they are rendered,
// starting with the latest one.  Slow readers only ever see the newest
// frame.  The channel is closed by cancel or when the session closes.
func (s *Session) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, 1)
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	if s.latest.Scene != nil {
		ch <- s.latest
	}
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
			s.active.Store(s.clock().UnixNano())
		}
	}
}

// Subscribers is the number of attached frame streams.
func (s *Session) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

// Close stops the session and waits for its goroutine and any in-flight
// engagement publishes.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.stopped
	s.inflight.Wait()
}

func (s *Session) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			s.cancelFrame()
			s.closeSubscribers()
			return
		case msg := <-s.inbox:
			switch m := msg.(type) {
			case inputMsg:
				s.handleInput(m.in)
			case frameMsg:
				s.handleFrame(m)
			case snapshotMsg:
				if s.dirty {
					s.render(s.clock())
				}
				m.reply <- s.latest
			case syncMsg:
				close(m.reply)
			}
		}
	}
}

func (s *Session) handleInput(in Input) {
	s.metrics.SessionEventsTotal.WithLabelValues(s.view, string(in.Type)).Inc()
	if !in.IsPointer() {
		s.apply(s.ctrl.Command(in), in.At)
		return
	}
	for _, g := range s.recognizer.Handle(in) {
		s.apply(s.ctrl.Gesture(g), in.At)
	}
}

func (s *Session) apply(eff Effect, at time.Time) {
	if eff.Halt {
		s.halt()
	}
	if eff.Animate && !s.animating {
		s.animating = true
		s.lastTick = s.clock()
		s.metrics.MomentumLoopsTotal.WithLabelValues().Inc()
		s.requestFrame()
	}
	if eff.Redraw {
		s.dirty = true
		s.requestFrame()
	}
	for _, ev := range eff.Events {
		ev.SessionID = s.id
		ev.OccurredAt = at
		s.publish(ev)
	}
}

// halt stops the animation loop and drops the pending frame, so a callback
// that was already queued is ignored.
func (s *Session) halt() {
	s.animating = false
	s.cancelFrame()
	if s.dirty {
		s.requestFrame()
	}
}

func (s *Session) requestFrame() {
	if s.frame != nil {
		return
	}
	gen := s.frameGen
	s.frame = s.scheduler.RequestFrame(func(now time.Time) {
		select {
		case s.inbox <- frameMsg{gen: gen, now: now}:
		case <-s.done:
		}
	})
}

func (s *Session) cancelFrame() {
	if s.frame == nil {
		return
	}
	s.frame.Cancel()
	s.frame = nil
	s.frameGen++
}

func (s *Session) handleFrame(m frameMsg) {
	if m.gen != s.frameGen || s.frame == nil {
		return
	}
	s.frame = nil
	s.frameGen++

	if s.animating {
		elapsed := m.now.Sub(s.lastTick)
		s.lastTick = m.now
		s.animating = s.ctrl.Tick(elapsed)
		s.dirty = true
	}
	if s.dirty {
		s.render(m.now)
	}
	if s.animating {
		s.requestFrame()
	}
}

func (s *Session) render(at time.Time) {
	start := time.Now()
	scene := s.ctrl.Scene()
	prometheus.RecordRender(s.metrics, s.view, "scene", time.Since(start))

	s.seq++
	s.dirty = false
	f := Frame{Seq: s.seq, View: s.view, At: at, Scene: scene}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.latest = f
	for _, ch := range s.subs {
		select {
		case ch <- f:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- f:
			default:
			}
		}
	}
}

func (s *Session) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// publish sends an engagement event without blocking the session.
// Failures are logged and dropped.
func (s *Session) publish(ev engagement.Event) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("engagement publish failed",
				logging.String("type", string(ev.Type)),
				logging.Err(err))
		}
	}()
}

//Personal.AI order the ending
