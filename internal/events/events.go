// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrders   = "order_events"
	TopicPayments = "payment_events"
	TopicInvoices = "invoice_events"
)

const (
	OrderCreated               = "order_created"
	OrderStatusChanged         = "order_status_changed"
	PaymentGatewayOrderCreated = "payment_gateway_order_created"
	PaymentVerified            = "payment_verified"
	PaymentVerificationFailed  = "payment_verification_failed"
	InvoiceCreated             = "invoice_created"
)

// Event is the envelope written as the message value.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func New(eventType string, data any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, evt Event) error
}

// KafkaPublisher writes asynchronously. Publish returns once the message is
// queued and delivery failures are reported through failed.
type KafkaPublisher struct {
	writer *kafka.Writer
	failed func(msgs []kafka.Message, err error)
}

func NewKafkaPublisher(brokers []string, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = slog.Default()
	}
	p := &KafkaPublisher{
		failed: func(msgs []kafka.Message, err error) {
			for _, m := range msgs {
				log.Warn("event_delivery_failed", "topic", m.Topic, "key", string(m.Key), "error", err)
			}
		},
	}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		MaxAttempts:            3,
		Async:                  true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				p.failed(msgs, err)
			}
		},
	}
	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

// Close flushes queued messages before closing the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop drops every event. It stands in when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) error { return nil }

// Message is one event captured by Recorder.
type Message struct {
	Topic string
	Key   string
	Event Event
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
	Err  error
}

func (r *Recorder) Publish(_ context.Context, topic, key string, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.msgs = append(r.msgs, Message{Topic: topic, Key: key, Event: evt})
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Types lists the event types published to topic, in order.
func (r *Recorder) Types(topic string) []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Topic == topic {
			out = append(out, m.Event.Type)
		}
	}
	return out
}
