package postgres

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/paymanager/internal/repository"
)

const transactionColumns = `id, client_id, COALESCE(gateway_id, 0), external_id, status, amount, card_last_numbers, created_at, updated_at`

// TransactionRepository реализует repository.TransactionRepository и repository.OutboxRepository на PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func scanTransaction(row pgx.Row) (repository.Transaction, error) {
	var t repository.Transaction
	err := row.Scan(&t.ID, &t.ClientID, &t.GatewayID, &t.ExternalID, &t.Status, &t.Amount,
		&t.CardLastNumbers, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create сохраняет транзакцию, позиции и outbox событие в одной транзакции БД
func (r *TransactionRepository) Create(ctx context.Context, txn repository.Transaction, newEvent repository.EventFactory) (repository.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return repository.Transaction{}, err
	}
	defer tx.Rollback(ctx)

	saved, err := scanTransaction(tx.QueryRow(ctx,
		`INSERT INTO transactions (client_id, gateway_id, external_id, status, amount, card_last_numbers)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+transactionColumns,
		txn.ClientID, txn.GatewayID, txn.ExternalID, txn.Status, txn.Amount, txn.CardLastNumbers))
	if err != nil {
		return repository.Transaction{}, mapError(err)
	}

	saved.Items = make([]repository.TransactionProduct, 0, len(txn.Items))
	for _, item := range txn.Items {
		it := repository.TransactionProduct{TransactionID: saved.ID, ProductID: item.ProductID, Quantity: item.Quantity}
		err = tx.QueryRow(ctx,
			`INSERT INTO transaction_products (transaction_id, product_id, quantity)
			 VALUES ($1, $2, $3)
			 RETURNING id, created_at, updated_at`,
			saved.ID, item.ProductID, item.Quantity).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
		if err != nil {
			return repository.Transaction{}, err
		}
		saved.Items = append(saved.Items, it)
	}

	if newEvent != nil {
		event, err := newEvent(saved)
		if err != nil {
			return repository.Transaction{}, err
		}
		if event != nil {
			if err = insertOutboxEvent(ctx, tx, *event, saved.ID); err != nil {
				return repository.Transaction{}, err
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return repository.Transaction{}, err
	}
	return saved, nil
}

// GetByID собирает транзакцию вместе с позициями
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (repository.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		return repository.Transaction{}, mapError(err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, transaction_id, COALESCE(product_id, 0), quantity, created_at, updated_at
		 FROM transaction_products
		 WHERE transaction_id = $1
		 ORDER BY id`,
		id)
	if err != nil {
		return repository.Transaction{}, err
	}
	defer rows.Close()

	t.Items = make([]repository.TransactionProduct, 0)
	for rows.Next() {
		var it repository.TransactionProduct
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return repository.Transaction{}, err
		}
		t.Items = append(t.Items, it)
	}
	if err = rows.Err(); err != nil {
		return repository.Transaction{}, err
	}
	return t, nil
}

func (r *TransactionRepository) List(ctx context.Context) ([]repository.Transaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY id`)
}

func (r *TransactionRepository) ListByClient(ctx context.Context, clientID int64) ([]repository.Transaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE client_id = $1 ORDER BY id`, clientID)
}

// MarkRefunded условный UPDATE по статусу paid; конкурентный второй возврат получит ErrStatusConflict
func (r *TransactionRepository) MarkRefunded(ctx context.Context, id int64, event *repository.OutboxEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE transactions SET status = $2, updated_at = now()
		 WHERE id = $1 AND status = $3`,
		id, repository.StatusRefunded, repository.StatusPaid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrStatusConflict
	}

	if event != nil {
		if err = insertOutboxEvent(ctx, tx, *event, id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *TransactionRepository) query(ctx context.Context, sql string, args ...any) ([]repository.Transaction, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.Transaction, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		t.Items = make([]repository.TransactionProduct, 0)
		out = append(out, t)
		ids = append(ids, t.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	// позиции всех транзакций одним запросом
	itemRows, err := r.pool.Query(ctx,
		`SELECT id, transaction_id, COALESCE(product_id, 0), quantity, created_at, updated_at
		 FROM transaction_products
		 WHERE transaction_id = ANY($1)
		 ORDER BY id`,
		ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	index := make(map[int64]int, len(out))
	for i, t := range out {
		index[t.ID] = i
	}
	for itemRows.Next() {
		var it repository.TransactionProduct
		if err := itemRows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[it.TransactionID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, itemRows.Err()
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, event repository.OutboxEvent, txnID int64) error {
	if event.AggregateID == "" {
		event.AggregateID = strconv.FormatInt(txnID, 10)
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO outbox_events (event_id, topic, aggregate_id, event_type, payload, status)
		 VALUES ($1, $2, $3, $4, $5, 'pending')`,
		event.EventID, event.Topic, event.AggregateID, event.EventType, event.Payload)
	return mapError(err)
}
