package service

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shestoi/paymanager/internal/repository"
)

const (
	EventPurchasePaid     = "purchase.paid"
	EventPurchaseRefunded = "purchase.refunded"

	eventVersion = 1
)

// PurchaseEvent payload события покупки в Kafka
type PurchaseEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	EventVersion  int       `json:"event_version"`
	OccurredAt    time.Time `json:"occurred_at"`
	TransactionID int64     `json:"transaction_id"`
	ClientID      int64     `json:"client_id"`
	GatewayID     int64     `json:"gateway_id"`
	ExternalID    string    `json:"external_id"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
}

// EventBuilder собирает outbox записи. Выключенный builder возвращает nil события
type EventBuilder struct {
	enabled bool
	topic   string
	now     func() time.Time
}

func NewEventBuilder(enabled bool, topic string) *EventBuilder {
	return &EventBuilder{enabled: enabled, topic: topic, now: time.Now}
}

// Build outbox событие для транзакции; ключ сообщения = id транзакции
func (b *EventBuilder) Build(eventType string, txn repository.Transaction) (*repository.OutboxEvent, error) {
	if b == nil || !b.enabled {
		return nil, nil
	}

	occurred := b.now().UTC()
	payload := PurchaseEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  eventVersion,
		OccurredAt:    occurred,
		TransactionID: txn.ID,
		ClientID:      txn.ClientID,
		GatewayID:     txn.GatewayID,
		ExternalID:    txn.ExternalID,
		Amount:        txn.Amount,
		Status:        string(txn.Status),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &repository.OutboxEvent{
		EventID:     payload.EventID,
		Topic:       b.topic,
		AggregateID: strconv.FormatInt(txn.ID, 10),
		EventType:   eventType,
		Payload:     raw,
		Status:      repository.OutboxPending,
		CreatedAt:   occurred,
	}, nil
}

// factory EventFactory для TransactionRepository.Create; nil, если события выключены
func (b *EventBuilder) factory(eventType string) repository.EventFactory {
	if b == nil || !b.enabled {
		return nil
	}
	return func(txn repository.Transaction) (*repository.OutboxEvent, error) {
		return b.Build(eventType, txn)
	}
}
