package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sergioamr/farm-management/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewEvent(t *testing.T) {
	e := NewEvent("inventory", ActionCreated, "abc", nil)
	assert.Equal(t, "inventory.created", e.Type)
	assert.Equal(t, "inventory.created.abc", e.Key())
	assert.False(t, e.OccurredAt.IsZero())
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	event := NewEvent("pricing", ActionRestored, "p-1", map[string]string{"supplierId": "s-1"})
	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "pricing.restored.p-1", string(msg.Key))
	assert.Equal(t, "pricing.restored", string(msg.Headers[0].Value))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "p-1", decoded["id"])
	assert.Equal(t, "s-1", decoded["payload"].(map[string]interface{})["supplierId"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}
	assert.EqualError(t, p.Publish(context.Background(), NewEvent("supplier", ActionUpdated, "1", nil)), "broker down")
}

func TestNewKafkaWriterFlushesPromptly(t *testing.T) {
	w := NewKafkaWriter(config.KafkaConfig{
		Brokers:      []string{"k1:9092"},
		Topic:        "farm-management-events",
		BatchTimeout: 10 * time.Millisecond,
	})
	defer w.Close()

	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	assert.Equal(t, "farm-management-events", w.Topic)
}
