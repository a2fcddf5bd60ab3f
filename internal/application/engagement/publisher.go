package engagement

import (
	"context"
	"time"

	"github.com/ben-daghir/hercap/internal/infrastructure/messaging/kafka"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
)

// MessagePublisher is the part of kafka.Producer the publisher uses.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *kafka.ProducerMessage) error
}

// KafkaPublisher wraps events in an EventEnvelope and publishes them to the
// engagement topic.
type KafkaPublisher struct {
	producer MessagePublisher
	topic    string
	source   string
	logger   logging.Logger
	metrics  *prometheus.AppMetrics
}

func NewKafkaPublisher(producer MessagePublisher, topic, source string, log logging.Logger, metrics *prometheus.AppMetrics) *KafkaPublisher {
	if topic == "" {
		topic = kafka.TopicPortfolioEngagement
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		source:   source,
		logger:   log.Named("engagement.publisher"),
		metrics:  metrics,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	env, err := kafka.NewEventEnvelope(string(event.Type), p.source, event)
	if err != nil {
		return err
	}
	if event.SessionID != "" {
		env.Metadata = map[string]string{"session_id": event.SessionID}
	}
	msg, err := env.ToMessage(p.topic, event.Key())
	if err != nil {
		return err
	}

	err = p.producer.Publish(ctx, msg)
	prometheus.RecordEngagement(p.metrics, "published", string(event.Type), err)
	if err != nil {
		p.logger.Warn("engagement publish failed",
			logging.String("type", string(event.Type)),
			logging.Err(err))
		return err
	}
	return nil
}

//Personal.AI order the ending
