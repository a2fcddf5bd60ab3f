package engagement

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/infrastructure/database/redis"
	"github.com/ben-daghir/hercap/internal/infrastructure/messaging/kafka"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

func newTestRecorder(t *testing.T) (*Recorder, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(&redis.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRecorder(redis.NewScoreboard(client), nil, nil), mr
}

func envelopeMessage(t *testing.T, event Event) *kafka.Message {
	t.Helper()
	env, err := kafka.NewEventEnvelope(string(event.Type), "test", event)
	require.NoError(t, err)
	pm, err := env.ToMessage(kafka.TopicPortfolioEngagement, event.Key())
	require.NoError(t, err)
	return &kafka.Message{Topic: pm.Topic, Key: pm.Key, Value: pm.Value}
}

func TestRecorder_HandleMessage(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()

	for _, e := range []Event{
		{Type: EventCompanySelected, CompanyName: "Acme"},
		{Type: EventCompanySelected, CompanyName: "Acme"},
		{Type: EventCompanySelected, CompanyName: "Bolt"},
		{Type: EventCategorySelected, Category: "AI"},
	} {
		require.NoError(t, r.HandleMessage(ctx, envelopeMessage(t, e)))
	}

	top, err := r.Top(ctx, BoardCompanies, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, redis.ScoreEntry{Member: "Acme", Score: 2}, top[0])

	cats, err := r.Top(ctx, BoardCategories, 10)
	require.NoError(t, err)
	assert.Equal(t, []redis.ScoreEntry{{Member: "AI", Score: 1}}, cats)
}

func TestRecorder_DropsPoisonMessages(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()

	assert.NoError(t, r.HandleMessage(ctx, &kafka.Message{Value: []byte("garbage")}))
	assert.NoError(t, r.HandleMessage(ctx, envelopeMessage(t, Event{Type: EventCompanySelected})))

	top, err := r.Top(ctx, BoardCompanies, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestRecorder_StorageErrorIsRetried(t *testing.T) {
	r, mr := newTestRecorder(t)
	mr.Close()
	err := r.HandleMessage(context.Background(), envelopeMessage(t, Event{Type: EventCategorySelected, Category: "AI"}))
	assert.Error(t, err)
}

func TestRecorder_TopUnknownBoard(t *testing.T) {
	r, _ := newTestRecorder(t)
	_, err := r.Top(context.Background(), "sessions", 5)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

//Personal.AI order the ending
