package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// DistributedLock is a single-owner mutex shared between hercap processes.
type DistributedLock interface {
	Lock(ctx context.Context) error
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	Extend(ctx context.Context, ttl time.Duration) (bool, error)
	TTL(ctx context.Context) (time.Duration, error)
}

type LockOption func(*Mutex)

// WithLockTTL sets how long the key lives without being extended.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(m *Mutex) { m.ttl = ttl }
}

func WithRetryDelay(d time.Duration) LockOption {
	return func(m *Mutex) { m.retryDelay = d }
}

// WithRetryCount bounds the extra attempts Lock makes after the first.
func WithRetryCount(n int) LockOption {
	return func(m *Mutex) { m.retries = n }
}

// WithWatchdog keeps a held lock alive by extending it every ttl/3.
func WithWatchdog(on bool) LockOption {
	return func(m *Mutex) { m.watchdog = on }
}

// Both scripts compare the stored token before touching the key.
var (
	releaseScript = redis.NewScript(`if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`)
	refreshScript = redis.NewScript(`if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("PEXPIRE", KEYS[1], ARGV[2]) end return 0`)
)

// Mutex is a SET NX lock on "<prefix>lock:<name>" holding a random token.
type Mutex struct {
	client *Client
	key    string
	token  string
	logger logging.Logger

	ttl        time.Duration
	retryDelay time.Duration
	retries    int
	watchdog   bool

	mu   sync.Mutex
	stop func()
}

func NewMutex(client *Client, name string, log logging.Logger, opts ...LockOption) *Mutex {
	if log == nil {
		log = logging.NewNopLogger()
	}
	m := &Mutex{
		client:     client,
		key:        client.Key("lock", name),
		token:      uuid.NewString(),
		logger:     log.With(logging.String("lock", name)),
		ttl:        30 * time.Second,
		retryDelay: 100 * time.Millisecond,
		retries:    30,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lock polls TryLock until it succeeds, the retries run out or ctx ends.
func (m *Mutex) Lock(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		ok, err := m.TryLock(ctx)
		switch {
		case err != nil:
			return err
		case ok:
			return nil
		case attempt >= m.retries:
			return ErrLockNotAcquired
		}
		t := time.NewTimer(m.retryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	ok, err := m.client.SetNX(ctx, m.key, m.token, m.ttl).Result()
	if err != nil && err != redis.Nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock")
	}
	if ok && m.watchdog {
		m.startWatchdog()
	}
	return ok, nil
}

func (m *Mutex) Unlock(ctx context.Context) error {
	m.stopWatchdog()
	n, err := releaseScript.Run(ctx, m.client.Universal(), []string{m.key}, m.token).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend resets the expiry to ttl and reports false when the lock is no
// longer ours.
func (m *Mutex) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	n, err := refreshScript.Run(ctx, m.client.Universal(), []string{m.key}, m.token, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (m *Mutex) TTL(ctx context.Context) (time.Duration, error) {
	return m.client.PTTL(ctx, m.key).Result()
}

func (m *Mutex) startWatchdog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.stop = func() {
		cancel()
		<-done
	}
	go func() {
		defer close(done)
		m.keepAlive(ctx)
	}()
}

func (m *Mutex) stopWatchdog() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (m *Mutex) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(m.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		ok, err := m.Extend(ctx, m.ttl)
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Error("lock extension failed", logging.Err(err))
			}
			return
		}
		if !ok {
			m.logger.Warn("lock lost while held")
			return
		}
	}
}

//Personal.AI order the ending
