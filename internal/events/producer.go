package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	topicOrderEvents = "order-events"
)

// Producer publishes order lifecycle events to Kafka for downstream
// consumers (analytics, kitchen displays). Publishing is fire-and-forget
// from the pipeline's point of view: a broker outage never fails a checkout.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewProducer(brokers string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    topicOrderEvents,
		Balancer: &kafka.LeastBytes{},
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

func (p *Producer) PublishOrderCreated(event OrderCreatedEvent) error {
	return p.publish(event.EventID, "order.created", event)
}

func (p *Producer) PublishStatusChanged(event OrderStatusChangedEvent) error {
	return p.publish(event.EventID, "order.status_changed", event)
}

func (p *Producer) publish(key, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("type", eventType), zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("type", eventType),
			zap.String("event_id", key),
			zap.Error(err))
		return err
	}
	return nil
}

// HealthCheck verifies the broker connection is alive.
func (p *Producer) HealthCheck() error {
	conn, err := kafka.Dial("tcp", p.writer.Addr.String())
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Brokers()
	return err
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
