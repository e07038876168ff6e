// Package kafka publishes order status changes to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventTypeStatusChanged is sent in the event-type header of every message.
const EventTypeStatusChanged = "order.status_changed"

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a synchronous writer for topic. Messages are hashed by key so that all
// changes of one order land on the same partition in order.
func NewWriter(brokers []string, topic string, log *zap.Logger) *kafka.Writer {
	l := kafkaLogger{logger: logger.OrNop(log)}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		Logger:       l,
		ErrorLogger:  l,
	}
}

// OrderEventPublisher writes one JSON message per committed transition, keyed by order id.
type OrderEventPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

var _ ports.OrderEventPublisher = (*OrderEventPublisher)(nil)

func NewOrderEventPublisher(writer MessageWriter, log *zap.Logger) *OrderEventPublisher {
	return &OrderEventPublisher{
		writer: writer,
		logger: logger.OrNop(log).With(zap.String("component", "order_event_publisher")),
	}
}

// StatusChangedMessage is the wire form of order.StatusChanged.
type StatusChangedMessage struct {
	OrderID         string    `json:"orderId"`
	VendorID        string    `json:"vendorId"`
	CustomerID      string    `json:"customerId"`
	RiderID         *string   `json:"riderId,omitempty"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	ActorRole       string    `json:"actorRole"`
	ActorID         string    `json:"actorId"`
	RejectionReason *string   `json:"rejectionReason,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// MessageOf converts event into its wire form.
func MessageOf(event order.StatusChanged) StatusChangedMessage {
	msg := StatusChangedMessage{
		OrderID:         event.OrderID.String(),
		VendorID:        event.VendorID.String(),
		CustomerID:      event.CustomerID.String(),
		From:            event.From.String(),
		To:              event.To.String(),
		ActorRole:       event.Actor.Role.String(),
		ActorID:         event.Actor.ID.String(),
		RejectionReason: event.RejectionReason,
		OccurredAt:      event.At.UTC(),
	}
	if event.RiderID != nil {
		rider := event.RiderID.String()
		msg.RiderID = &rider
	}
	return msg
}

func (p *OrderEventPublisher) PublishStatusChanged(ctx context.Context, event order.StatusChanged) error {
	value, err := json.Marshal(MessageOf(event))
	if err != nil {
		return fmt.Errorf("encode status change of order %s: %w", event.OrderID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: value,
		Time:  event.At.UTC(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventTypeStatusChanged)},
		},
	}
	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish status change of order %s: %w", event.OrderID, err)
	}

	p.logger.Debug("status change published",
		zap.Stringer("order_id", event.OrderID),
		zap.String("to", event.To.String()),
	)
	return nil
}

// Close flushes and closes the writer.
func (p *OrderEventPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event. It is used when Kafka is disabled.
type NoopPublisher struct{}

var _ ports.OrderEventPublisher = NoopPublisher{}

func (NoopPublisher) PublishStatusChanged(context.Context, order.StatusChanged) error { return nil }

type kafkaLogger struct {
	logger *zap.Logger
}

func (l kafkaLogger) Printf(msg string, args ...interface{}) {
	l.logger.Sugar().Debugf(msg, args...)
}
