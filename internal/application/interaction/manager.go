package interaction

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ben-daghir/hercap/internal/application/engagement"
	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
	"github.com/ben-daghir/hercap/pkg/errors"
)

var (
	ErrSessionNotFound      = errors.New(errors.ErrCodeSessionNotFound, "session not found")
	ErrSessionLimitExceeded = errors.New(errors.ErrCodeSessionLimitExceeded, "too many open sessions")
	ErrManagerClosed        = errors.New(errors.ErrCodeServiceUnavailable, "session manager is shutting down")
)

// Factory builds the controller for a new session of view at the given
// frame size.  Zero sizes select the view's defaults.
type Factory func(ctx context.Context, view string, width, height float64) (Controller, error)

// SessionInfo describes an open session.
type SessionInfo struct {
	ID         string    `json:"id"`
	View       string    `json:"view"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

func WithScheduler(s Scheduler) ManagerOption {
	return func(m *Manager) { m.scheduler = s }
}

func WithPublisher(p engagement.Publisher) ManagerOption {
	return func(m *Manager) { m.publisher = p }
}

func WithLogger(l logging.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(metrics *prometheus.AppMetrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

func WithClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) { m.clock = clock }
}

// Manager owns every open session.  Sessions idle for longer than the
// configured timeout are closed by Run.
type Manager struct {
	cfg       config.SessionConfig
	factory   Factory
	scheduler Scheduler
	publisher engagement.Publisher
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
	clock     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(cfg config.SessionConfig, factory Factory, opts ...ManagerOption) *Manager {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = config.DefaultMaxSessions
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = config.DefaultIdleTimeout
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = config.DefaultInboxSize
	}
	m := &Manager{
		cfg:      cfg,
		factory:  factory,
		clock:    time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.scheduler == nil {
		m.scheduler = NewTimerScheduler(cfg.FrameInterval)
	}
	if m.publisher == nil {
		m.publisher = engagement.NopPublisher{}
	}
	if m.logger == nil {
		m.logger = logging.NewNopLogger()
	}
	m.logger = m.logger.Named("sessions")
	if m.metrics == nil {
		m.metrics = prometheus.NewNoopAppMetrics()
	}
	return m
}

// Create opens a session for view.
func (m *Manager) Create(ctx context.Context, view string, width, height float64) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, ErrSessionLimitExceeded.WithDetail("max=" + strconv.Itoa(m.cfg.MaxSessions))
	}
	m.mu.Unlock()

	ctrl, err := m.factory(ctx, view, width, height)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check: the factory ran unlocked.
	if m.closed {
		return nil, ErrManagerClosed
	}
	if len(m.sessions) >= m.cfg.MaxSessions {
		return nil, ErrSessionLimitExceeded.WithDetail("max=" + strconv.Itoa(m.cfg.MaxSessions))
	}
	s := newSession(uuid.NewString(), ctrl, sessionDeps{
		scheduler: m.scheduler,
		publisher: m.publisher,
		logger:    m.logger,
		metrics:   m.metrics,
		clock:     m.clock,
		inboxSize: m.cfg.InboxSize,
	})
	m.sessions[s.id] = s
	m.metrics.SessionsActive.WithLabelValues(s.view).Inc()
	m.logger.Info("session opened", logging.String("session_id", s.id), logging.String("view", s.view))
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound.WithDetail("id=" + id)
	}
	return s, nil
}

// Close closes one session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound.WithDetail("id=" + id)
	}
	m.closeSession(s, "closed")
	return nil
}

func (m *Manager) closeSession(s *Session, reason string) {
	s.Close()
	m.metrics.SessionsActive.WithLabelValues(s.view).Dec()
	m.logger.Info("session "+reason, logging.String("session_id", s.id), logging.String("view", s.view))
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// List describes the open sessions, oldest first.
func (m *Manager) List() []SessionInfo {
	m.mu.Lock()
	out := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, SessionInfo{ID: s.id, View: s.view, CreatedAt: s.createdAt, LastActive: s.LastActive()})
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// EvictIdle closes sessions with no input since before now minus the idle
// timeout and returns how many were closed.  A session with a frame stream
// attached is being watched and is never idle.
func (m *Manager) EvictIdle(now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTimeout)
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.Subscribers() == 0 && s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.closeSession(s, "evicted")
	}
	return len(idle)
}

// Run evicts idle sessions until ctx ends, then shuts every session down.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.cfg.IdleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			return nil
		case <-ticker.C:
			if n := m.EvictIdle(m.clock()); n > 0 {
				m.logger.Debug("evicted idle sessions", logging.Int("count", n))
			}
		}
	}
}

// Shutdown closes every session and rejects new ones.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			m.closeSession(s, "closed")
		}(s)
	}
	wg.Wait()
}

//Personal.AI order the ending
