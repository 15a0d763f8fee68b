package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderEventProducer publishes order events to a Kafka topic. It is one of
// the two interchangeable event-bus backends (see services.Publisher).
type OrderEventProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewOrderEventProducer(brokers []string, topic string, logger *zap.Logger) *OrderEventProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("Kafka order-event producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &OrderEventProducer{writer: w, logger: logger}
}

// Publish writes the message keyed so that deliveries for the same
// checkout session land on the same partition, in order.
func (p *OrderEventProducer) Publish(ctx context.Context, key string, message []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: message,
	})
}

func (p *OrderEventProducer) Close() {
	if err := p.writer.Close(); err != nil {
		p.logger.Warn("Failed to close kafka writer", zap.Error(err))
	}
}
