package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
)

// mockKafkaReader serves queued messages then blocks until the context ends.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	fetchErrs int
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if m.fetchErrs > 0 {
		m.fetchErrs--
		m.mu.Unlock()
		return kafka.Message{}, errors.New("fetch failed")
	}
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockKafkaReader) committedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

func newTestConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers:           []string{"localhost:9092"},
		GroupID:           "hercap-test",
		Topics:            []string{TopicPortfolioEngagement},
		FetchErrorBackoff: time.Millisecond,
		RetryConfig: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			MaxRetryBackoff: 2 * time.Millisecond,
		},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(newTestConsumerConfig()))

	cfg := newTestConsumerConfig()
	cfg.GroupID = ""
	assert.Error(t, ValidateConsumerConfig(cfg))

	cfg = newTestConsumerConfig()
	cfg.Topics = nil
	assert.Error(t, ValidateConsumerConfig(cfg))

	cfg = newTestConsumerConfig()
	cfg.AutoOffsetReset = "middle"
	assert.Error(t, ValidateConsumerConfig(cfg))
}

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	r := &mockKafkaReader{queue: []kafka.Message{
		{Topic: TopicPortfolioEngagement, Offset: 1, Value: []byte("a"), Headers: []kafka.Header{{Key: "event_type", Value: []byte("x")}}},
		{Topic: TopicPortfolioEngagement, Offset: 2, Value: []byte("b")},
	}}
	c := newConsumerWithReader(r, newTestConsumerConfig(), logging.NewNopLogger())

	var mu sync.Mutex
	var seen []string
	var header string
	c.Subscribe(TopicPortfolioEngagement, func(ctx context.Context, msg *Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(msg.Value))
		if msg.Offset == 1 {
			header = msg.Headers["event_type"]
		}
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.committedCount() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, "x", header)
	assert.True(t, r.closed)

	consumed, processed, failed := c.Stats()
	assert.Equal(t, int64(2), consumed)
	assert.Equal(t, int64(2), processed)
	assert.Equal(t, int64(0), failed)
}

func TestConsumer_RetriesThenCommits(t *testing.T) {
	r := &mockKafkaReader{queue: []kafka.Message{{Topic: TopicPortfolioEngagement, Value: []byte("bad")}}}
	c := newConsumerWithReader(r, newTestConsumerConfig(), nil)

	var calls atomic.Int32
	c.Subscribe(TopicPortfolioEngagement, func(ctx context.Context, msg *Message) error {
		calls.Add(1)
		return errors.New("handler failed")
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.committedCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	// One attempt plus two retries.
	assert.Equal(t, int32(3), calls.Load())
	_, _, failed := c.Stats()
	assert.Equal(t, int64(1), failed)
}

func TestConsumer_RecoversAfterRetry(t *testing.T) {
	r := &mockKafkaReader{queue: []kafka.Message{{Topic: TopicPortfolioEngagement, Value: []byte("flaky")}}}
	c := newConsumerWithReader(r, newTestConsumerConfig(), nil)

	var calls atomic.Int32
	c.Subscribe(TopicPortfolioEngagement, func(ctx context.Context, msg *Message) error {
		if calls.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.committedCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	_, processed, failed := c.Stats()
	assert.Equal(t, int64(1), processed)
	assert.Equal(t, int64(0), failed)
}

func TestConsumer_UnhandledTopicIsCommitted(t *testing.T) {
	r := &mockKafkaReader{queue: []kafka.Message{{Topic: "other", Value: []byte("x")}}}
	c := newConsumerWithReader(r, newTestConsumerConfig(), nil)

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.committedCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
}

func TestConsumer_FetchErrorBacksOff(t *testing.T) {
	r := &mockKafkaReader{
		fetchErrs: 2,
		queue:     []kafka.Message{{Topic: TopicPortfolioEngagement, Value: []byte("ok")}},
	}
	c := newConsumerWithReader(r, newTestConsumerConfig(), nil)
	c.Subscribe(TopicPortfolioEngagement, func(ctx context.Context, msg *Message) error { return nil })

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.committedCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
}

func TestConsumer_StartTwice(t *testing.T) {
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), nil)
	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

//Personal.AI order the ending
