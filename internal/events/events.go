// Package events publishes domain events after successful writes
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sergioamr/farm-management/pkg/config"
)

// Actions carried by domain events
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionDeactivated  = "deactivated"
	ActionRestored     = "restored"
	ActionStockUpdated = "stock_updated"
	ActionLowStock     = "low_stock"
)

// DomainEvent describes a committed change to one record
type DomainEvent struct {
	Type       string      `json:"type"`
	Entity     string      `json:"entity"`
	ID         string      `json:"id"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload,omitempty"`
}

// NewEvent builds an event of type "<entity>.<action>"
func NewEvent(entity, action, id string, payload interface{}) DomainEvent {
	return DomainEvent{
		Type:       entity + "." + action,
		Entity:     entity,
		ID:         id,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Key partitions events per record, e.g. "inventory.created.<id>"
func (e DomainEvent) Key() string {
	return fmt.Sprintf("%s.%s", e.Type, e.ID)
}

// Publisher delivers domain events
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON to one topic
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaWriter creates a writer for the configured brokers and topic
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{}, // same record, same partition
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           cfg.BatchTimeout, // writes are synchronous on the request path
	}
}

// NewKafkaPublisher creates a KafkaPublisher on w
func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event DomainEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop drops every event
type Noop struct{}

func (Noop) Publish(context.Context, DomainEvent) error { return nil }

func (Noop) Close() error { return nil }
