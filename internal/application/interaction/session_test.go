package interaction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ben-daghir/hercap/internal/application/engagement"
	"github.com/ben-daghir/hercap/internal/domain/globe"
	"github.com/ben-daghir/hercap/internal/domain/sector"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
	"github.com/ben-daghir/hercap/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []engagement.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev engagement.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []engagement.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]engagement.Event(nil), p.events...)
}

func startSession(t *testing.T, ctrl Controller, pub engagement.Publisher) (*Session, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler(t0, globe.FrameDuration)
	if pub == nil {
		pub = engagement.NopPublisher{}
	}
	s := newSession("s-1", ctrl, sessionDeps{
		scheduler: sched,
		publisher: pub,
		logger:    logging.NewNopLogger(),
		metrics:   prometheus.NewNoopAppMetrics(),
		clock:     sched.Now,
		inboxSize: 16,
	})
	t.Cleanup(s.Close)
	return s, sched
}

func send(t *testing.T, s *Session, inputs ...Input) {
	t.Helper()
	ctx := context.Background()
	for _, in := range inputs {
		require.NoError(t, s.Send(ctx, in))
	}
	require.NoError(t, s.Sync(ctx))
}

// step fires one frame interval and waits for the session to handle it.
func step(t *testing.T, s *Session, sched *ManualScheduler) int {
	t.Helper()
	n := sched.Step()
	require.NoError(t, s.Sync(context.Background()))
	return n
}

func latestSeq(t *testing.T, s *Session) uint64 {
	t.Helper()
	ch, cancel := s.Subscribe()
	defer cancel()
	f := <-ch
	return f.Seq
}

func TestSession_InitialFrame(t *testing.T) {
	s, sched := startSession(t, newYorkGlobe(), nil)

	assert.Equal(t, "s-1", s.ID())
	assert.Equal(t, "globe", s.View())
	assert.Equal(t, t0, s.CreatedAt())
	assert.Equal(t, uint64(1), latestSeq(t, s))
	assert.Equal(t, 0, sched.Pending())
}

func TestSession_RedrawsCoalesceIntoOneFrame(t *testing.T) {
	layout := sector.Compute(testCompanies())
	s, sched := startSession(t, NewSectorController(layout, 0, 0, ""), nil)

	send(t, s,
		Input{Type: InputPointerDown, X: 10, Y: 10},
		Input{Type: InputPointerMove, X: 20, Y: 10},
		Input{Type: InputPointerMove, X: 30, Y: 10},
		Input{Type: InputPointerMove, X: 40, Y: 10},
	)
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, uint64(1), latestSeq(t, s))

	assert.Equal(t, 1, step(t, s, sched))
	assert.Equal(t, uint64(2), latestSeq(t, s))
	assert.Equal(t, 0, sched.Pending(), "sector frames do not chain")
}

func TestSession_MomentumLoopRunsToRest(t *testing.T) {
	ctrl := newYorkGlobe()
	s, sched := startSession(t, ctrl, nil)

	send(t, s,
		Input{Type: InputPointerDown, X: 300, Y: 300},
		Input{Type: InputPointerMove, X: 340, Y: 300},
		Input{Type: InputPointerUp, X: 340, Y: 300},
	)
	require.Equal(t, 1, sched.Pending(), "one frame for the drag and the momentum loop")

	frames := 0
	for sched.Pending() > 0 {
		step(t, s, sched)
		frames++
		require.Less(t, frames, 5000)
	}
	assert.Greater(t, frames, 1)
	assert.Equal(t, uint64(1+frames), latestSeq(t, s))

	f, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1+frames), f.Seq, "nothing left to draw")
}

func TestSession_PressCancelsMomentum(t *testing.T) {
	ctrl := newYorkGlobe()
	s, sched := startSession(t, ctrl, nil)

	send(t, s,
		Input{Type: InputPointerDown, X: 300, Y: 300},
		Input{Type: InputPointerMove, X: 340, Y: 300},
		Input{Type: InputPointerUp, X: 340, Y: 300},
	)
	step(t, s, sched)
	require.Equal(t, 1, sched.Pending())
	seq := latestSeq(t, s)

	send(t, s, Input{Type: InputPointerDown, X: 340, Y: 300})
	assert.Equal(t, 0, sched.Pending(), "pending frame cancelled")
	assert.Equal(t, 0, sched.Advance(time.Second))
	assert.Equal(t, seq, latestSeq(t, s))
}

func TestSession_LateFrameIsIgnored(t *testing.T) {
	s, _ := startSession(t, newYorkGlobe(), nil)
	require.NoError(t, s.post(context.Background(), frameMsg{gen: 42, now: t0}))
	require.NoError(t, s.Sync(context.Background()))
	assert.Equal(t, uint64(1), latestSeq(t, s))
}

func TestSession_SnapshotFlushesPendingState(t *testing.T) {
	c := newYorkGlobe()
	s, sched := startSession(t, c, nil)

	send(t, s, Input{Type: InputZoomIn})
	require.Equal(t, 1, sched.Pending())

	f, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), f.Seq)
	require.NotNil(t, f.Scene)
	assert.Equal(t, "globe", f.View)

	// The pending frame fires with nothing to draw.
	step(t, s, sched)
	assert.Equal(t, uint64(2), latestSeq(t, s))
}

func TestSession_ClickPublishesEngagement(t *testing.T) {
	ctrl := newYorkGlobe()
	pt, _ := globe.NewProjection(ctrl.State(), 600, 600).Project(-74.006, 40.7128)
	pub := &recordingPublisher{err: errors.New(errors.ErrCodeEventPublishFailed, "broker down")}
	s, _ := startSession(t, ctrl, pub)

	send(t, s,
		Input{Type: InputPointerDown, X: pt.X, Y: pt.Y},
		Input{Type: InputPointerUp, X: pt.X, Y: pt.Y},
	)
	require.Eventually(t, func() bool { return len(pub.Events()) == 1 }, time.Second, time.Millisecond)

	ev := pub.Events()[0]
	assert.Equal(t, engagement.EventCompanySelected, ev.Type)
	assert.Equal(t, "s-1", ev.SessionID)
	assert.Equal(t, t0, ev.OccurredAt)
	assert.Equal(t, "Aurelia", ev.CompanyName)

	f, err := s.Snapshot(context.Background())
	require.NoError(t, err, "publish failures do not affect the session")
	require.NotNil(t, f.Scene.Card)
}

func TestSession_SubscribersSeeLatestFrame(t *testing.T) {
	s, sched := startSession(t, newYorkGlobe(), nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	first := <-ch
	assert.Equal(t, uint64(1), first.Seq)

	send(t, s, Input{Type: InputZoomIn})
	step(t, s, sched)
	send(t, s, Input{Type: InputZoomIn})
	step(t, s, sched)

	// The reader was slow: only the newest frame is buffered.
	f := <-ch
	assert.Equal(t, uint64(3), f.Seq)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected frame %d", extra.Seq)
	default:
	}
}

func TestSession_Close(t *testing.T) {
	s, sched := startSession(t, newYorkGlobe(), nil)
	ch, cancel := s.Subscribe()
	<-ch

	send(t, s, Input{Type: InputZoomIn})
	require.Equal(t, 1, sched.Pending())

	s.Close()
	s.Close()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, sched.Pending(), "close cancels the pending frame")

	err := s.Send(context.Background(), Input{Type: InputZoomIn})
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionClosed))
	_, err = s.Snapshot(context.Background())
	assert.Error(t, err)

	late, cancelLate := s.Subscribe()
	_, open = <-late
	assert.False(t, open)
	cancelLate()

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestSession_SendRejectsInvalidInput(t *testing.T) {
	s, _ := startSession(t, newYorkGlobe(), nil)
	err := s.Send(context.Background(), Input{Type: "bogus"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeEventInvalid))
}

func TestSession_SendTracksActivity(t *testing.T) {
	s, sched := startSession(t, newYorkGlobe(), nil)
	sched.Advance(time.Minute)
	send(t, s, Input{Type: InputPointerMove, X: 1, Y: 1})
	assert.True(t, t0.Add(time.Minute).Equal(s.LastActive()))
}

func TestSession_TimerScheduler(t *testing.T) {
	s := newSession("live", newYorkGlobe(), sessionDeps{
		scheduler: NewTimerScheduler(time.Millisecond),
		publisher: engagement.NopPublisher{},
		logger:    logging.NewNopLogger(),
		metrics:   prometheus.NewNoopAppMetrics(),
		clock:     time.Now,
		inboxSize: 4,
	})
	defer s.Close()

	ch, cancel := s.Subscribe()
	defer cancel()
	<-ch

	require.NoError(t, s.Send(context.Background(), Input{Type: InputZoomIn}))
	select {
	case f := <-ch:
		assert.Equal(t, uint64(2), f.Seq)
	case <-time.After(time.Second):
		t.Fatal("frame never rendered")
	}
}

//Personal.AI order the ending
