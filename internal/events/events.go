// Package events publishes lecture lifecycle events through watermill.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/SAP-F-2025/lecture-service/internal/config"
)

const (
	EventSource  = "lecture-service"
	EventVersion = "1.0"

	LectureCreated = "lecture.created"
	LectureDeleted = "lecture.deleted"
)

// Event is the envelope written as the message payload
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// LectureEvent is the data of lecture.created and lecture.deleted
type LectureEvent struct {
	LectureID        uint     `json:"lecture_id"`
	TeacherProfileID uint     `json:"teacher_profile_id"`
	ClassSlotID      *uint    `json:"class_slot_id,omitempty"`
	School           string   `json:"school,omitempty"`
	Title            string   `json:"title"`
	Score            *float64 `json:"score,omitempty"`
	Actor            string   `json:"actor"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return Event{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// EventPublisher delivers events to the configured broker
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type watermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewEventPublisher builds an in-process gochannel or a Kafka publisher from configuration
func NewEventPublisher(cfg config.EventsConfig, logger *slog.Logger) (EventPublisher, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	var publisher message.Publisher
	switch cfg.Driver {
	case config.EventsDriverGoChannel:
		publisher = gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
	case config.EventsDriverKafka:
		kafkaPublisher, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		publisher = kafkaPublisher
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}

	return NewWatermillPublisher(publisher, cfg.Topic, logger), nil
}

// NewWatermillPublisher publishes events on topic through any watermill publisher
func NewWatermillPublisher(publisher message.Publisher, topic string, logger *slog.Logger) EventPublisher {
	return &watermillPublisher{publisher: publisher, topic: topic, logger: logger}
}

func (p *watermillPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.DebugContext(ctx, "Event published", "event_id", event.ID, "event_type", event.Type, "topic", p.topic)
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}
