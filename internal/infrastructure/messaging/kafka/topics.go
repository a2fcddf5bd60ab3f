package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// TopicPortfolioEngagement carries selection events from sessions to the
// worker.
const TopicPortfolioEngagement = "portfolio.engagement"

// SchemaVersion is stamped on every envelope this service produces.
const SchemaVersion = "v1"

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func NewEventEnvelope(eventType string, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeEventDecodeFailed, "empty payload")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeEventDecodeFailed, "failed to decode payload")
	}
	return nil
}

// ToMessage serialises the envelope. key selects the partition so events for
// one subject stay ordered.
func (e *EventEnvelope) ToMessage(topic string, key string) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	msg := &ProducerMessage{
		Topic: topic,
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}

func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	if msg == nil || len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeEventDecodeFailed, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEventDecodeFailed, "failed to unmarshal envelope")
	}
	if env.EventType == "" {
		return nil, errors.New(errors.ErrCodeEventDecodeFailed, "envelope missing event_type")
	}
	return &env, nil
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager manages Kafka topics.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to dial kafka")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

func (c TopicConfig) validate() error {
	switch {
	case c.Name == "":
		return errors.New(errors.ErrCodeValidation, "topic name required")
	case c.NumPartitions <= 0:
		return errors.New(errors.ErrCodeValidation, "NumPartitions must be > 0").WithDetail(c.Name)
	case c.ReplicationFactor <= 0:
		return errors.New(errors.ErrCodeValidation, "ReplicationFactor must be > 0").WithDetail(c.Name)
	}
	return nil
}

func (c TopicConfig) kafkaConfig() kafka.TopicConfig {
	entries := map[string]string{}
	if c.RetentionMs > 0 {
		entries["retention.ms"] = strconv.FormatInt(c.RetentionMs, 10)
	}
	if c.CleanupPolicy != "" {
		entries["cleanup.policy"] = c.CleanupPolicy
	}
	if c.MaxMessageBytes > 0 {
		entries["max.message.bytes"] = strconv.Itoa(c.MaxMessageBytes)
	}
	for k, v := range c.Configs {
		entries[k] = v
	}
	out := kafka.TopicConfig{
		Topic:             c.Name,
		NumPartitions:     c.NumPartitions,
		ReplicationFactor: c.ReplicationFactor,
	}
	for k, v := range entries {
		out.ConfigEntries = append(out.ConfigEntries, kafka.ConfigEntry{ConfigName: k, ConfigValue: v})
	}
	return out
}

// CreateTopic is idempotent: a topic that already exists is not an error.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	err := m.conn.CreateTopics(cfg.kafkaConfig())
	if err == nil {
		m.logger.Info("topic created", logging.String("topic", cfg.Name), logging.Int("partitions", cfg.NumPartitions))
		return nil
	}
	if strings.Contains(err.Error(), "already exists") {
		return nil
	}
	if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
		return nil
	}
	return errors.Wrap(err, errors.ErrCodeExternalService, "create topic "+cfg.Name)
}

func (m *TopicManager) TopicExists(_ context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, topic := range topics {
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics returns the topics hercap publishes to, with the engagement
// topic renamed to name when non-empty.
func DefaultTopics(name string) []TopicConfig {
	if name == "" {
		name = TopicPortfolioEngagement
	}
	return []TopicConfig{
		{Name: name, NumPartitions: 6, ReplicationFactor: 1, RetentionMs: 30 * 24 * 3600 * 1000},
	}
}

//Personal.AI order the ending
