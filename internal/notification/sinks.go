package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaSink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	EventVersion  int       `json:"event_version"`
	OccurredAt    time.Time `json:"occurred_at"`
	Producer      string    `json:"producer"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Payload       payload   `json:"payload"`
}

type payload struct {
	UserID     int64             `json:"user_id"`
	Recipient  string            `json:"recipient"`
	Subject    string            `json:"subject"`
	Body       string            `json:"body"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// KafkaSink publishes each event as a JSON envelope keyed by user id, so one
// customer's messages stay ordered within a partition.
type KafkaSink struct {
	writer   MessageWriter
	producer string
}

func NewKafkaSink(writer MessageWriter, producer string) *KafkaSink {
	return &KafkaSink{writer: writer, producer: producer}
}

func (s *KafkaSink) Deliver(ctx context.Context, e Event) error {
	correlation := e.Attributes["orderId"]
	if correlation == "" {
		correlation = e.Attributes["quotationId"]
	}

	value, err := json.Marshal(envelope{
		EventID:       e.ID,
		EventType:     e.Type,
		EventVersion:  1,
		OccurredAt:    e.OccurredAt.UTC(),
		Producer:      s.producer,
		CorrelationID: correlation,
		Payload: payload{
			UserID:     e.UserID,
			Recipient:  e.Recipient,
			Subject:    e.Subject,
			Body:       e.Body,
			Attributes: e.Attributes,
		},
	})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.UserID, 10)),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing notification: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// LogSink writes events to the log. Used when no broker is configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, e Event) error {
	s.logger.Info("notification",
		zap.String("eventId", e.ID),
		zap.String("event", e.Type),
		zap.Int64("userId", e.UserID),
		zap.String("recipient", e.Recipient),
		zap.String("subject", e.Subject),
		zap.String("body", e.Body),
	)
	return nil
}
