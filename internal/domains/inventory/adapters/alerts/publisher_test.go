package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, domain.Alert) error { return p.err }

func expiringAlert() domain.Alert {
	expires := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return domain.Alert{
		Kind:             domain.AlertExpiration,
		ItemID:           "item-1",
		ProductName:      "Milk",
		StockLevel:       4,
		ReorderThreshold: 5,
		ExpiresAt:        &expires,
	}
}

func TestLogPublisherWritesWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	require.NoError(t, NewLogPublisher(logger).Publish(context.Background(), expiringAlert()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "item nearing expiration", entry["msg"])
	assert.Equal(t, "Milk", entry["product_name"])
	assert.Contains(t, entry, "expires_at")
}

func TestKafkaPublisherEncodesAlert(t *testing.T) {
	writer := &captureWriter{}
	publisher := NewKafkaPublisher(writer)
	publisher.now = func() time.Time { return time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, publisher.Publish(context.Background(), expiringAlert()))
	require.Len(t, writer.msgs, 1)

	msg := writer.msgs[0]
	assert.Equal(t, "item-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "expiration_warning", string(msg.Headers[0].Value))

	var event alertEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "expiration_warning", event.Kind)
	assert.Equal(t, "Milk", event.ProductName)
	assert.Equal(t, float64(4), event.StockLevel)
	require.NotNil(t, event.ExpiresAt)
	assert.True(t, event.EmittedAt.Equal(publisher.now()))
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	err := NewKafkaPublisher(&captureWriter{err: boom}).Publish(context.Background(), expiringAlert())
	assert.ErrorIs(t, err, boom)

	var nilPublisher *KafkaPublisher
	assert.Error(t, nilPublisher.Publish(context.Background(), expiringAlert()))
}

func TestNewKafkaWriterDefaultsTopic(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "")
	assert.Equal(t, DefaultTopic, w.Topic)
	assert.IsType(t, &kafka.LeastBytes{}, w.Balancer)
}

func TestFanoutJoinsErrors(t *testing.T) {
	writer := &captureWriter{}
	boom := errors.New("boom")
	fan := Fanout{failingPublisher{err: boom}, nil, NewKafkaPublisher(writer)}

	err := fan.Publish(context.Background(), expiringAlert())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, writer.msgs, 1)
}
