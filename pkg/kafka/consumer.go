package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/utafrali/catalog-search/pkg/kafka"

// Retry defaults applied when ConsumerConfig leaves them zero.
const (
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 100 * time.Millisecond
)

// Handler is a function that processes a Kafka event.
type Handler func(ctx context.Context, event *Event) error

// Reader is the subset of *kafka.Reader the consumer relies on.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	MinBytes int
	MaxBytes int
	// MaxRetries is the number of handler attempts before a message is
	// committed and skipped.
	MaxRetries   int
	RetryBackoff time.Duration
}

// Consumer reads events from one or more topics as part of a consumer
// group and dispatches them to a Handler.
type Consumer struct {
	reader     Reader
	group      string
	handler    Handler
	logger     *slog.Logger
	tracer     trace.Tracer
	maxRetries int
	backoff    time.Duration
	closeOnce  sync.Once
}

// NewConsumer creates a consumer reading cfg.Topics with a group reader.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
	})
	return NewConsumerWithReader(r, cfg, handler, logger)
}

// NewConsumerWithReader creates a consumer over an existing reader. Only the
// group and retry settings of cfg are used.
func NewConsumerWithReader(r Reader, cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	c := &Consumer{
		reader:     r,
		group:      cfg.GroupID,
		handler:    handler,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.backoff <= 0 {
		c.backoff = DefaultRetryBackoff
	}
	return c
}

// Start begins consuming messages. It blocks until the context is canceled
// and closes the reader on return.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("group", c.group))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("group", c.group))
				return c.Close()
			}
			if errors.Is(err, io.EOF) {
				return c.Close()
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		if !c.process(ctx, msg) {
			return c.Close()
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process handles a single message. Messages that cannot be decoded or that
// keep failing are logged and skipped. It returns false when ctx was
// canceled mid-retry and the message must not be committed.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	labels := []string{msg.Topic, c.group}
	ConsumerMessagesReceived.WithLabelValues(labels...).Inc()

	ctx = otel.GetTextMapPropagator().Extract(ctx, NewHeaderCarrier(&msg.Headers))
	ctx, span := c.tracer.Start(ctx, "consume "+msg.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to unmarshal event",
			slog.String("topic", msg.Topic),
			slog.String("error", err.Error()),
		)
		span.SetStatus(codes.Error, "undecodable message")
		ConsumerMessagesFailed.WithLabelValues(labels...).Inc()
		return true
	}
	if event.EventType == "" {
		event.EventType = msg.Topic
	}

	start := time.Now()
	lastErr := c.handleWithRetry(ctx, msg, event)
	ConsumerProcessingDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

	switch {
	case lastErr == nil:
		ConsumerMessagesProcessed.WithLabelValues(labels...).Inc()
	case ctx.Err() != nil:
		return false
	default:
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
		ConsumerMessagesFailed.WithLabelValues(labels...).Inc()
		c.logger.ErrorContext(ctx, "handler failed after all retries, skipping message",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.Int("retries", c.maxRetries),
			slog.String("error", lastErr.Error()),
		)
	}
	return true
}

func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message, event *Event) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		lastErr = c.handler(ctx, event)
		if lastErr == nil {
			return nil
		}

		c.logger.WarnContext(ctx, "handler failed, will retry",
			slog.String("event_type", event.EventType),
			slog.String("topic", msg.Topic),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}
	return lastErr
}

// Close closes the consumer. It is safe to call multiple times.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

// PingBrokers dials the given brokers and returns nil if at least one
// answers a metadata request.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}

	var lastErr error
	for _, addr := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", lastErr)
}

// TopicPrefix is the standard prefix for all platform topics.
const TopicPrefix = "ecommerce"

// Topic constructs a fully-qualified topic name.
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
