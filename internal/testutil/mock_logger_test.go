package testutil_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/testutil"
	"github.com/ben-daghir/hercap/pkg/errors"
)

var _ logging.Logger = (*testutil.MockLogger)(nil)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)
	v, ok := messages[0].Field("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareLog(t *testing.T) {
	logger := testutil.NewMockLogger()
	child := logger.Named("feed").With(logging.String("source", "file")).Named("cache")

	child.Warn("miss", logging.Int("attempt", 1))
	logger.WithError(errors.New(errors.ErrCodeInternal, "boom")).Error("failed")
	logger.WithContext(context.Background()).Debug("plain")

	msg, ok := logger.Find("warn", "miss")
	require.True(t, ok)
	assert.Equal(t, "feed.cache", msg.Logger)
	require.Len(t, msg.Fields, 2)
	assert.Equal(t, "source", msg.Fields[0].Key)
	assert.Equal(t, "attempt", msg.Fields[1].Key)

	msg, ok = logger.Find("error", "fail")
	require.True(t, ok)
	assert.Empty(t, msg.Logger)
	_, ok = msg.Field("error")
	assert.True(t, ok)

	assert.Len(t, logger.GetMessages(), 3)
	assert.NoError(t, logger.Sync())
}

func TestStaticFetcher(t *testing.T) {
	companies, err := testutil.StaticFetcher{Companies: testutil.Companies()}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, companies, 5)
	for _, c := range companies {
		assert.NoError(t, c.Validate(), c.Name)
	}

	_, err = testutil.StaticFetcher{Err: errors.New(errors.ErrCodeInternal, "down")}.Load(context.Background())
	assert.Error(t, err)
	assert.FileExists(t, testutil.FeedFixturePath())
	assert.FileExists(t, testutil.WorldFixturePath())
}

//Personal.AI order the ending
