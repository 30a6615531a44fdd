package postgres

import (
	"context"

	"github.com/shestoi/paymanager/internal/repository"
)

// GetPendingOutboxEvents выбирает pending события; SKIP LOCKED позволяет нескольким
// экземплярам dispatcher не брать одни и те же строки
func (r *TransactionRepository) GetPendingOutboxEvents(ctx context.Context, limit int) ([]repository.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT event_id, topic, aggregate_id, event_type, payload, status, attempts,
		        COALESCE(last_error, ''), created_at, sent_at
		 FROM outbox_events
		 WHERE status = 'pending'
		 ORDER BY created_at
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]repository.OutboxEvent, 0, limit)
	for rows.Next() {
		var ev repository.OutboxEvent
		if err := rows.Scan(&ev.EventID, &ev.Topic, &ev.AggregateID, &ev.EventType, &ev.Payload,
			&ev.Status, &ev.Attempts, &ev.LastError, &ev.CreatedAt, &ev.SentAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *TransactionRepository) MarkOutboxEventSent(ctx context.Context, eventID string) error {
	return r.execOutbox(ctx,
		`UPDATE outbox_events SET status = 'sent', sent_at = now() WHERE event_id = $1`,
		eventID)
}

func (r *TransactionRepository) MarkOutboxEventFailed(ctx context.Context, eventID string, lastError string) error {
	return r.execOutbox(ctx,
		`UPDATE outbox_events SET status = 'failed', attempts = attempts + 1, last_error = $2 WHERE event_id = $1`,
		eventID, lastError)
}

func (r *TransactionRepository) ResetOutboxEventPending(ctx context.Context, eventID string) error {
	return r.execOutbox(ctx,
		`UPDATE outbox_events SET status = 'pending' WHERE event_id = $1`,
		eventID)
}

func (r *TransactionRepository) execOutbox(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
