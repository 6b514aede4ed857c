package kafka

import (
	kafkago "github.com/segmentio/kafka-go"

	"storefront/internal/config"
)

// NewWriter returns a synchronous writer for the notification topic. The
// dispatcher already runs off the request path, so writes wait for acks.
func NewWriter(cfg config.KafkaConfig) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.NotificationTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
}
