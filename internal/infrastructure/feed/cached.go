package feed

import (
	"context"
	"time"

	"github.com/ben-daghir/hercap/internal/infrastructure/database/redis"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
)

// CachedSource keeps the raw feed body in Redis so restarted processes can
// reuse a recent fetch.  When a refresh lock is configured only one process
// fetches upstream on a miss; the others wait for the lock and then read the
// body it cached.  Cache and lock failures degrade to a direct fetch.
type CachedSource struct {
	inner   Source
	cache   redis.Cache
	lock    redis.DistributedLock
	ttl     time.Duration
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

type CachedOption func(*CachedSource)

// WithRefreshLock serialises upstream fetches across processes.
func WithRefreshLock(lock redis.DistributedLock) CachedOption {
	return func(c *CachedSource) { c.lock = lock }
}

func WithCacheMetrics(m *prometheus.AppMetrics) CachedOption {
	return func(c *CachedSource) { c.metrics = m }
}

func NewCachedSource(inner Source, cache redis.Cache, ttl time.Duration, log logging.Logger, opts ...CachedOption) *CachedSource {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &CachedSource{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		logger:  log.Named("feed.cache"),
		metrics: prometheus.NewNoopAppMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedSource) Name() string { return c.inner.Name() }

func (c *CachedSource) key() string { return "feed:" + c.inner.Name() }

func (c *CachedSource) Fetch(ctx context.Context) ([]byte, error) {
	if data, ok := c.lookup(ctx); ok {
		return data, nil
	}

	if c.lock != nil {
		if err := c.lock.Lock(ctx); err != nil {
			c.logger.Warn("feed refresh lock unavailable, fetching directly", logging.Err(err))
		} else {
			defer func() {
				if err := c.lock.Unlock(context.WithoutCancel(ctx)); err != nil {
					c.logger.Warn("feed refresh unlock failed", logging.Err(err))
				}
			}()
			// Another process may have refreshed while we waited.
			if data, ok := c.lookup(ctx); ok {
				return data, nil
			}
		}
	}

	return c.cache.GetOrLoadBytes(ctx, c.key(), c.ttl, c.inner.Fetch)
}

func (c *CachedSource) lookup(ctx context.Context) ([]byte, bool) {
	data, err := c.cache.GetBytes(ctx, c.key())
	if err == nil {
		prometheus.RecordFeedCache(c.metrics, true)
		c.logger.Debug("feed served from cache", logging.Int("bytes", len(data)))
		return data, true
	}
	prometheus.RecordFeedCache(c.metrics, false)
	if err != redis.ErrCacheMiss {
		c.logger.Debug("feed cache lookup failed", logging.Err(err))
	}
	return nil, false
}

// Invalidate drops the cached body.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, c.key())
}

//Personal.AI order the ending
