package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/service"
)

// MessageReader часть kafka.Reader, нужная consumer'у
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PurchaseEventHandler обработчик одного события покупки
type PurchaseEventHandler func(ctx context.Context, event service.PurchaseEvent) error

// NewKafkaReader reader топика событий покупок в consumer group
func NewKafkaReader(brokers []string, groupID, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
}

// PurchaseEventConsumer читает purchase.paid / purchase.refunded из Kafka
type PurchaseEventConsumer struct {
	logger  *zap.Logger
	reader  MessageReader
	handler PurchaseEventHandler
}

func NewPurchaseEventConsumer(logger *zap.Logger, reader MessageReader, handler PurchaseEventHandler) *PurchaseEventConsumer {
	return &PurchaseEventConsumer{logger: logger, reader: reader, handler: handler}
}

// Start блокируется до отмены ctx.
// At-least-once: offset коммитится только после успешной обработки
func (c *PurchaseEventConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting purchase event consumer")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			continue
		}

		if !c.processMessage(ctx, m) {
			continue
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage true -> offset можно коммитить
func (c *PurchaseEventConsumer) processMessage(ctx context.Context, m kafka.Message) bool {
	event, err := decodePurchaseEvent(m)
	if err != nil {
		// битое сообщение повторно не читаем
		c.logger.Error("skipping malformed purchase event",
			zap.Error(err),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		return true
	}

	if err := c.handler(ctx, event); err != nil {
		c.logger.Warn("failed to handle purchase event",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return false
	}
	return true
}

func decodePurchaseEvent(m kafka.Message) (service.PurchaseEvent, error) {
	var event service.PurchaseEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return service.PurchaseEvent{}, fmt.Errorf("unmarshal purchase event: %w", err)
	}
	switch event.EventType {
	case service.EventPurchasePaid, service.EventPurchaseRefunded:
	default:
		return service.PurchaseEvent{}, fmt.Errorf("unknown event type %q", event.EventType)
	}
	if event.TransactionID <= 0 {
		return service.PurchaseEvent{}, fmt.Errorf("event %s without transaction_id", event.EventID)
	}
	return event, nil
}

// Close закрывает Kafka reader
func (c *PurchaseEventConsumer) Close() error {
	return c.reader.Close()
}
