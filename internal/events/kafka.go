// Package events publishes stock-change notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mhalvorsen/stockroom/internal/catalog"
)

// stockChangeEvent is the wire shape of a published stock transition.
type stockChangeEvent struct {
	ProductID int64     `json:"productId"`
	OldStock  int       `json:"oldStock"`
	NewStock  int       `json:"newStock"`
	ChangedBy string    `json:"changedBy"`
	Timestamp time.Time `json:"timestamp"`
}

// Producer implements catalog.EventPublisher on a Kafka topic. Messages
// are keyed by product id so consumers see each product's transitions in
// order.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer}
}

func (p *Producer) PublishStockChange(ctx context.Context, e catalog.InventoryLogEntry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	data, err := json.Marshal(stockChangeEvent{
		ProductID: e.ProductID,
		OldStock:  e.OldStock,
		NewStock:  e.NewStock,
		ChangedBy: e.ChangedBy,
		Timestamp: ts,
	})
	if err != nil {
		return fmt.Errorf("encode stock change event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.ProductID, 10)),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write stock change event: %w", err)
	}
	return nil
}

// Close flushes buffered messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
