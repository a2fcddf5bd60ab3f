package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

// RetryConfig defines per-message retry behavior.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers            []string
	GroupID            string
	Topics             []string
	AutoOffsetReset    string
	AutoCommitInterval time.Duration
	SessionTimeout     time.Duration
	HeartbeatInterval  time.Duration
	MaxWait            time.Duration
	FetchErrorBackoff  time.Duration
	RetryConfig        RetryConfig
}

type consumerCounters struct {
	consumed, processed, failed atomic.Int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer dispatches messages from a consumer group to per-topic handlers.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	handlers map[string]MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	counters consumerCounters
}

// NewConsumer creates a new Consumer.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	applyConsumerDefaults(&cfg)

	readerCfg := kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		GroupTopics:       cfg.Topics,
		MaxWait:           cfg.MaxWait,
		CommitInterval:    cfg.AutoCommitInterval,
		SessionTimeout:    cfg.SessionTimeout,
		HeartbeatInterval: cfg.HeartbeatInterval,
		StartOffset:       kafka.FirstOffset,
		Dialer:            &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	}
	if cfg.AutoOffsetReset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}

	return newConsumerWithReader(kafka.NewReader(readerCfg), cfg, logger), nil
}

func newConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, logger logging.Logger) *Consumer {
	applyConsumerDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader:   r,
		config:   cfg,
		logger:   logger.Named("kafka.consumer"),
		handlers: make(map[string]MessageHandler),
	}
}

func applyConsumerDefaults(cfg *ConsumerConfig) {
	if cfg.AutoOffsetReset == "" {
		cfg.AutoOffsetReset = "earliest"
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 3 * time.Second
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = 10 * time.Second
	}
	if cfg.FetchErrorBackoff == 0 {
		cfg.FetchErrorBackoff = time.Second
	}
	if cfg.RetryConfig.MaxRetries == 0 {
		cfg.RetryConfig.MaxRetries = 3
	}
	if cfg.RetryConfig.RetryBackoff == 0 {
		cfg.RetryConfig.RetryBackoff = time.Second
	}
	if cfg.RetryConfig.MaxRetryBackoff == 0 {
		cfg.RetryConfig.MaxRetryBackoff = 30 * time.Second
	}
}

// Subscribe registers handler for topic, replacing any previous handler.
func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()
	c.logger.Info("subscribed", logging.String("topic", topic))
}

func (c *Consumer) handler(topic string) (MessageHandler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[topic]
	return h, ok
}

// Start runs the fetch loop in the background until ctx ends or Close.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for c.next(ctx) {
		}
	}()
	c.logger.Info("consumer started", logging.String("group", c.config.GroupID), logging.Any("topics", c.config.Topics))
	return nil
}

// next fetches, dispatches and commits one record. It reports false once
// the loop should stop.
func (c *Consumer) next(ctx context.Context) bool {
	raw, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		c.logger.Error("fetch failed", logging.Err(err))
		return sleep(ctx, c.config.FetchErrorBackoff)
	}
	c.counters.consumed.Add(1)

	msg := fromKafka(raw)
	if h, ok := c.handler(msg.Topic); !ok {
		c.logger.Warn("no handler for topic", logging.String("topic", msg.Topic))
	} else if err := c.dispatch(ctx, msg, h); err != nil {
		c.counters.failed.Add(1)
		if ctx.Err() != nil {
			return false
		}
	} else {
		c.counters.processed.Add(1)
	}

	// Exhausted records are committed too so a poison message cannot stall
	// the group.
	if err := c.reader.CommitMessages(ctx, raw); err != nil && ctx.Err() == nil {
		c.logger.Error("commit failed", logging.Int64("offset", raw.Offset), logging.Err(err))
	}
	return ctx.Err() == nil
}

// dispatch calls h until it succeeds or the retry budget is spent, doubling
// the wait between attempts up to MaxRetryBackoff.
func (c *Consumer) dispatch(ctx context.Context, msg *Message, h MessageHandler) error {
	rc := c.config.RetryConfig
	wait := rc.RetryBackoff
	err := h(ctx, msg)
	for attempt := 0; err != nil && attempt < rc.MaxRetries; attempt++ {
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
		wait = min(wait*2, rc.MaxRetryBackoff)
		err = h(ctx, msg)
	}
	if err != nil {
		c.logger.Error("message dropped after retries",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Int("attempts", rc.MaxRetries+1),
			logging.Err(err))
	}
	return err
}

func fromKafka(m kafka.Message) *Message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   headers,
	}
}

// sleep waits d and reports false when ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Stats returns consumed, processed and failed counts.
func (c *Consumer) Stats() (consumed, processed, failed int64) {
	return c.counters.consumed.Load(), c.counters.processed.Load(), c.counters.failed.Load()
}

// Close stops the loop, waits for the in-flight record and closes the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("consumer closed", logging.Int64("consumed", c.counters.consumed.Load()))
	return err
}

// ValidateConsumerConfig validates configuration.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "GroupID required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	if cfg.AutoOffsetReset != "" && cfg.AutoOffsetReset != "earliest" && cfg.AutoOffsetReset != "latest" {
		return errors.New(errors.ErrCodeValidation, "invalid AutoOffsetReset")
	}
	if cfg.RetryConfig.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "MaxRetries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
