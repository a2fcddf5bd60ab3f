package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/ben-daghir/hercap/pkg/errors"
)

type mockKafkaWriter struct {
	mu        sync.Mutex
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closed    int
	written   []kafka.Message
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func newTestProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:         []string{"localhost:9092"},
		MaxMessageBytes: 1024,
	}
}

func newTestProducerMessage(topic, key, value string) *ProducerMessage {
	return &ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func TestValidateProducerConfig_Valid(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(newTestProducerConfig()))
}

func TestValidateProducerConfig_EmptyBrokers(t *testing.T) {
	cfg := newTestProducerConfig()
	cfg.Brokers = nil
	err := ValidateProducerConfig(cfg)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestValidateProducerConfig_NegativeRetries(t *testing.T) {
	cfg := newTestProducerConfig()
	cfg.MaxRetries = -1
	assert.Error(t, ValidateProducerConfig(cfg))
}

func TestPublish_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newProducerWithWriter(w, newTestProducerConfig(), logging.NewNopLogger())

	msg := newTestProducerMessage(TopicPortfolioEngagement, "42", `{"id":42}`)
	msg.Headers = map[string]string{"event_type": "company.opened"}
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, w.written, 1)
	got := w.written[0]
	assert.Equal(t, TopicPortfolioEngagement, got.Topic)
	assert.Equal(t, []byte("42"), got.Key)
	assert.Equal(t, []byte(`{"id":42}`), got.Value)
	require.Len(t, got.Headers, 1)
	assert.Equal(t, "event_type", got.Headers[0].Key)
	assert.False(t, got.Time.IsZero())

	sent, failed := p.Stats()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(0), failed)
}

func TestPublish_Validation(t *testing.T) {
	p := newProducerWithWriter(&mockKafkaWriter{}, newTestProducerConfig(), nil)
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, nil))
	assert.Error(t, p.Publish(ctx, newTestProducerMessage("", "k", "v")))
	assert.Error(t, p.Publish(ctx, newTestProducerMessage("t", "k", "")))

	big := make([]byte, 2048)
	err := p.Publish(ctx, &ProducerMessage{Topic: "t", Value: big})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestPublish_WriterError(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
		return errors.New("broker down")
	}}
	p := newProducerWithWriter(w, newTestProducerConfig(), nil)

	err := p.Publish(context.Background(), newTestProducerMessage("t", "k", "v"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEventPublishFailed))

	sent, failed := p.Stats()
	assert.Equal(t, int64(0), sent)
	assert.Equal(t, int64(1), failed)
}

func TestPublish_AfterClose(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newProducerWithWriter(w, newTestProducerConfig(), nil)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)

	err := p.Publish(context.Background(), newTestProducerMessage("t", "k", "v"))
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestValidateProducerConfig_Codecs(t *testing.T) {
	cfg := newTestProducerConfig()
	cfg.Acks, cfg.CompressionCodec = "all", "zstd"
	assert.NoError(t, ValidateProducerConfig(cfg))

	cfg.Acks = "most"
	assert.Error(t, ValidateProducerConfig(cfg))

	cfg.Acks, cfg.CompressionCodec = "", "brotli"
	assert.Error(t, ValidateProducerConfig(cfg))
}

func TestToKafkaMessage_KeepsTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	km := toKafkaMessage(&ProducerMessage{Topic: "t", Value: []byte("v"), Timestamp: ts})
	assert.Equal(t, ts, km.Time)
	assert.Empty(t, km.Headers)
}

//Personal.AI order the ending
