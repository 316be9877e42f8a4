package kafka

import (
	"context"
	"encoding/json"

	"github.com/habtedev/AfriMart-sub000/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher is what the reconciliation engine depends on; tests swap
// in a recording fake.
type EventPublisher interface {
	SendPaymentEvent(event models.PaymentEvent) error
}

type PaymentEventProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewPaymentEventProducer(brokers []string, topic string) *PaymentEventProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &PaymentEventProducer{
		writer: writer,
		topic:  topic,
	}
}

func (p *PaymentEventProducer) SendPaymentEvent(event models.PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	}

	return p.writer.WriteMessages(context.Background(), msg)
}

func (p *PaymentEventProducer) Close() {
	_ = p.writer.Close()
}
