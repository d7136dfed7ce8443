package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

// DefaultTopic receives reorder and expiration alerts when none is configured.
const DefaultTopic = "inventory-alerts"

var (
	_ ports.AlertPublisher = (*LogPublisher)(nil)
	_ ports.AlertPublisher = (*KafkaPublisher)(nil)
	_ ports.AlertPublisher = Fanout(nil)
)

// LogPublisher writes alerts as structured warnings.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher builds a publisher backed by slog.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the alert.
func (p *LogPublisher) Publish(ctx context.Context, alert domain.Alert) error {
	attrs := []slog.Attr{
		slog.String("kind", string(alert.Kind)),
		slog.String("item_id", alert.ItemID),
		slog.String("product_name", alert.ProductName),
		slog.Float64("stock_level", alert.StockLevel),
		slog.Int("reorder_threshold", alert.ReorderThreshold),
	}
	if alert.ExpiresAt != nil {
		attrs = append(attrs, slog.Time("expires_at", *alert.ExpiresAt))
	}
	p.logger.LogAttrs(ctx, slog.LevelWarn, alertMessage(alert.Kind), attrs...)
	return nil
}

func alertMessage(kind domain.AlertKind) string {
	switch kind {
	case domain.AlertReorder:
		return "reorder needed"
	case domain.AlertExpiration:
		return "item nearing expiration"
	default:
		return "inventory alert"
	}
}

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher emits alerts as JSON messages keyed by item id.
type KafkaPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

// NewKafkaWriter builds a writer for the alert topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaPublisher wraps a message writer.
func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, now: time.Now}
}

type alertEvent struct {
	Kind             string     `json:"kind"`
	ItemID           string     `json:"itemId"`
	ProductName      string     `json:"productName"`
	StockLevel       float64    `json:"stockLevel"`
	ReorderThreshold int        `json:"reorderThreshold"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	EmittedAt        time.Time  `json:"emittedAt"`
}

// Publish serializes the alert and writes it to Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, alert domain.Alert) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka alert publisher not configured")
	}
	payload, err := json.Marshal(alertEvent{
		Kind:             string(alert.Kind),
		ItemID:           alert.ItemID,
		ProductName:      alert.ProductName,
		StockLevel:       alert.StockLevel,
		ReorderThreshold: alert.ReorderThreshold,
		ExpiresAt:        alert.ExpiresAt,
		EmittedAt:        p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(alert.ItemID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "alert-kind", Value: []byte(alert.Kind)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write alert: %w", err)
	}
	return nil
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []ports.AlertPublisher

// Publish forwards the alert to each publisher in order.
func (f Fanout) Publish(ctx context.Context, alert domain.Alert) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
