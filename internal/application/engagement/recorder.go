package engagement

import (
	"context"

	"github.com/ben-daghir/hercap/internal/infrastructure/database/redis"
	"github.com/ben-daghir/hercap/internal/infrastructure/messaging/kafka"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// Counter is the scoreboard surface the recorder needs.
type Counter interface {
	Incr(ctx context.Context, board, member string, delta float64) (float64, error)
	Top(ctx context.Context, board string, n int) ([]redis.ScoreEntry, error)
}

// Recorder counts engagement events and answers top-N queries.
type Recorder struct {
	counter Counter
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

func NewRecorder(counter Counter, log logging.Logger, metrics *prometheus.AppMetrics) *Recorder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	return &Recorder{counter: counter, logger: log.Named("engagement.recorder"), metrics: metrics}
}

// Record counts one event.
func (r *Recorder) Record(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	board, member := event.Board()
	_, err := r.counter.Incr(ctx, board, member, 1)
	return err
}

// HandleMessage is the kafka.MessageHandler for the engagement topic.
// Undecodable or invalid events are logged and acknowledged, since retrying
// them cannot succeed; only storage failures are returned for retry.
func (r *Recorder) HandleMessage(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		r.logger.Warn("dropping undecodable engagement message",
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		prometheus.RecordEngagement(r.metrics, "consumed", "unknown", err)
		return nil
	}

	var event Event
	if err := env.DecodePayload(&event); err != nil {
		r.logger.Warn("dropping engagement event with bad payload",
			logging.String("event_id", env.EventID),
			logging.Err(err))
		prometheus.RecordEngagement(r.metrics, "consumed", env.EventType, err)
		return nil
	}

	err = r.Record(ctx, event)
	prometheus.RecordEngagement(r.metrics, "consumed", env.EventType, err)
	if errors.IsCode(err, errors.ErrCodeEventInvalid) {
		r.logger.Warn("dropping invalid engagement event", logging.String("event_id", env.EventID), logging.Err(err))
		return nil
	}
	return err
}

// Top returns the n highest-counted members of board.
func (r *Recorder) Top(ctx context.Context, board string, n int) ([]redis.ScoreEntry, error) {
	if board != BoardCompanies && board != BoardCategories {
		return nil, errors.InvalidParam("unknown engagement board").WithDetail(board)
	}
	return r.counter.Top(ctx, board, n)
}

//Personal.AI order the ending
