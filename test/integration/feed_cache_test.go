//go:build integration

package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/infrastructure/database/redis"
	"github.com/ben-daghir/hercap/internal/infrastructure/feed"
	"github.com/ben-daghir/hercap/internal/testutil"
)

// countingSource counts fetches that reach the origin.
type countingSource struct {
	inner feed.Source
	calls atomic.Int32
}

func (s *countingSource) Name() string { return s.inner.Name() }

func (s *countingSource) Fetch(ctx context.Context) ([]byte, error) {
	s.calls.Add(1)
	return s.inner.Fetch(ctx)
}

func TestFeedCache_ServesRepeatLoadsFromRedis(t *testing.T) {
	rc := newRedis(t)
	log := testutil.NewMockLogger()
	origin := &countingSource{inner: feed.NewFileSource(testutil.FeedFixturePath())}
	cached := feed.NewCachedSource(origin, redis.NewRedisCache(rc, log), time.Minute, log)
	loader := feed.NewLoader(cached, log)
	ctx := context.Background()

	first, report, err := loader.LoadWithReport(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 5)
	assert.Positive(t, report.Skipped)

	second, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), origin.calls.Load())
	assert.True(t, log.HasMessage("debug", "feed served from cache"))

	require.NoError(t, cached.Invalidate(ctx))
	_, err = loader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), origin.calls.Load())
}

func TestFeedCache_RefreshLockCollapsesConcurrentMisses(t *testing.T) {
	rc := newRedis(t)
	origin := &countingSource{inner: feed.NewFileSource(testutil.FeedFixturePath())}
	cache := redis.NewRedisCache(rc, nil)

	const replicas = 4
	var wg sync.WaitGroup
	errs := make([]error, replicas)
	for i := 0; i < replicas; i++ {
		// Each replica holds its own lock handle on the shared key.
		src := feed.NewCachedSource(origin, cache, time.Minute, nil,
			feed.WithRefreshLock(redis.NewMutex(rc, "feed-refresh", nil, redis.WithRetryDelay(10*time.Millisecond))))
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = src.Fetch(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), origin.calls.Load())
}

//Personal.AI order the ending
