package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicSchoolEvents = "school_events"

	TypeUserRegistered         = "user_registered"
	TypePasswordResetRequested = "password_reset_requested"
	TypePasswordResetCompleted = "password_reset_completed"
	TypeTokenRevoked           = "token_revoked"
	TypeTeacherRegistered      = "teacher_registered"
	TypeStudentAdmitted        = "student_admitted"
)

type Event struct {
	Type    string         `json:"type"`
	Subject string         `json:"subject"`
	At      time.Time      `json:"at"`
	Data    map[string]any `json:"data,omitempty"`
}

// Publisher emits domain events. Publishing is best-effort relative to the
// HTTP response; callers log failures instead of propagating them.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.Subject),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop is used by tests and broker-less deployments.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
