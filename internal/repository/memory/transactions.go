package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shestoi/paymanager/internal/repository"
)

// TransactionRepository транзакции и outbox в памяти.
// Одна блокировка на обе таблицы, поэтому Create и MarkRefunded атомарны так же, как в postgres
type TransactionRepository struct {
	mu           sync.RWMutex
	nextID       int64
	nextItemID   int64
	transactions map[int64]repository.Transaction
	outbox       map[string]repository.OutboxEvent
	outboxOrder  []string
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		transactions: make(map[int64]repository.Transaction),
		outbox:       make(map[string]repository.OutboxEvent),
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn repository.Transaction, newEvent repository.EventFactory) (repository.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := now()
	txn.ID = r.nextID + 1
	txn.CreatedAt = ts
	txn.UpdatedAt = ts

	items := make([]repository.TransactionProduct, 0, len(txn.Items))
	for _, it := range txn.Items {
		it.ID = r.nextItemID + int64(len(items)) + 1
		it.TransactionID = txn.ID
		it.CreatedAt = ts
		it.UpdatedAt = ts
		items = append(items, it)
	}
	txn.Items = items

	var event *repository.OutboxEvent
	if newEvent != nil {
		ev, err := newEvent(copyTransaction(txn))
		if err != nil {
			return repository.Transaction{}, err
		}
		if ev != nil {
			if _, dup := r.outbox[ev.EventID]; dup {
				return repository.Transaction{}, repository.ErrAlreadyExists
			}
		}
		event = ev
	}

	// запись только после того, как всё проверено: частичных состояний нет
	r.nextID = txn.ID
	r.nextItemID += int64(len(items))
	r.transactions[txn.ID] = txn
	if event != nil {
		r.appendOutboxLocked(*event, txn.ID)
	}
	return copyTransaction(txn), nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (repository.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, ok := r.transactions[id]
	if !ok {
		return repository.Transaction{}, repository.ErrNotFound
	}
	return copyTransaction(txn), nil
}

func (r *TransactionRepository) List(ctx context.Context) ([]repository.Transaction, error) {
	return r.filter(func(repository.Transaction) bool { return true }), nil
}

func (r *TransactionRepository) ListByClient(ctx context.Context, clientID int64) ([]repository.Transaction, error) {
	return r.filter(func(t repository.Transaction) bool { return t.ClientID == clientID }), nil
}

func (r *TransactionRepository) MarkRefunded(ctx context.Context, id int64, event *repository.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.transactions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if txn.Status != repository.StatusPaid {
		return repository.ErrStatusConflict
	}

	txn.Status = repository.StatusRefunded
	txn.UpdatedAt = now()
	r.transactions[id] = txn

	if event != nil {
		r.appendOutboxLocked(*event, id)
	}
	return nil
}

func (r *TransactionRepository) filter(keep func(repository.Transaction) bool) []repository.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.Transaction, 0, len(r.transactions))
	for _, t := range r.transactions {
		if keep(t) {
			out = append(out, copyTransaction(t))
		}
	}
	sortByID(out, func(t repository.Transaction) int64 { return t.ID })
	return out
}

// appendOutboxLocked вызывается под r.mu
func (r *TransactionRepository) appendOutboxLocked(event repository.OutboxEvent, txnID int64) {
	if event.AggregateID == "" {
		event.AggregateID = formatID(txnID)
	}
	event.Status = repository.OutboxPending
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now()
	}
	r.outbox[event.EventID] = event
	r.outboxOrder = append(r.outboxOrder, event.EventID)
}

// GetPendingOutboxEvents pending события в порядке записи
func (r *TransactionRepository) GetPendingOutboxEvents(ctx context.Context, limit int) ([]repository.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.OutboxEvent, 0, limit)
	for _, id := range r.outboxOrder {
		if len(out) >= limit {
			break
		}
		if ev := r.outbox[id]; ev.Status == repository.OutboxPending {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *TransactionRepository) MarkOutboxEventSent(ctx context.Context, eventID string) error {
	return r.updateOutbox(eventID, func(ev *repository.OutboxEvent) {
		ts := now()
		ev.Status = repository.OutboxSent
		ev.SentAt = &ts
	})
}

func (r *TransactionRepository) MarkOutboxEventFailed(ctx context.Context, eventID string, lastError string) error {
	return r.updateOutbox(eventID, func(ev *repository.OutboxEvent) {
		ev.Status = repository.OutboxFailed
		ev.Attempts++
		ev.LastError = lastError
	})
}

func (r *TransactionRepository) ResetOutboxEventPending(ctx context.Context, eventID string) error {
	return r.updateOutbox(eventID, func(ev *repository.OutboxEvent) {
		ev.Status = repository.OutboxPending
	})
}

// OutboxEvents снимок всех событий outbox, для проверок в тестах
func (r *TransactionRepository) OutboxEvents() []repository.OutboxEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.OutboxEvent, 0, len(r.outboxOrder))
	for _, id := range r.outboxOrder {
		out = append(out, r.outbox[id])
	}
	return out
}

func (r *TransactionRepository) updateOutbox(eventID string, fn func(*repository.OutboxEvent)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.outbox[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&ev)
	r.outbox[eventID] = ev
	return nil
}

func copyTransaction(t repository.Transaction) repository.Transaction {
	items := make([]repository.TransactionProduct, len(t.Items))
	copy(items, t.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	t.Items = items
	return t
}
