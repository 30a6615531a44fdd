//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/jackc/pgx/v5/stdlib" //для goose миграций

	"github.com/shestoi/paymanager/internal/repository"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("paymanager"),
		postgres.WithUsername("paymanager"),
		postgres.WithPassword("paymanager"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	var pingErr error
	for i := 0; i < 10; i++ {
		pingErr = db.PingContext(ctx)
		if pingErr == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, pingErr, "Failed to ping database after retries")

	// internal/repository/postgres -> корень модуля
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")
	rootDir := filepath.Join(filepath.Dir(filename), "..", "..", "..")

	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.UpContext(ctx, db, filepath.Join(rootDir, "migrations")), "Failed to run migrations")

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRepositories_Integration(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(t)

	products := NewProductRepository(pool)
	clients := NewClientRepository(pool)
	gateways := NewGatewayRepository(pool)
	transactions := NewTransactionRepository(pool)
	users := NewUserRepository(pool)

	t.Run("seeded gateways ordered by priority", func(t *testing.T) {
		active, err := gateways.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 2)
		require.Equal(t, "Gateway1", active[0].Name)
		require.Equal(t, "Gateway2", active[1].Name)

		_, err = gateways.Update(ctx, repository.Gateway{ID: active[0].ID, IsActive: true, Priority: 3})
		require.NoError(t, err)

		active, err = gateways.ListActive(ctx)
		require.NoError(t, err)
		require.Equal(t, "Gateway2", active[0].Name)
	})

	t.Run("products filter and GetByIDs", func(t *testing.T) {
		p1, err := products.Create(ctx, repository.Product{Name: "Keyboard", Amount: 1500})
		require.NoError(t, err)
		p2, err := products.Create(ctx, repository.Product{Name: "Mouse", Amount: 800})
		require.NoError(t, err)

		got, err := products.GetByIDs(ctx, []int64{p2.ID, p1.ID, 999})
		require.NoError(t, err)
		require.Len(t, got, 2)

		page, err := products.List(ctx, repository.ProductFilter{Name: "key"}, repository.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		require.Equal(t, p1.ID, page.Items[0].ID)

		_, err = products.GetByID(ctx, 999)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("client email is unique", func(t *testing.T) {
		_, err := clients.Create(ctx, repository.Client{Name: "Ana", Email: "ana@example.com"})
		require.NoError(t, err)
		_, err = clients.Create(ctx, repository.Client{Name: "Ana 2", Email: "ana@example.com"})
		require.ErrorIs(t, err, repository.ErrAlreadyExists)
	})

	t.Run("transaction with items, outbox and refund", func(t *testing.T) {
		client, err := clients.GetByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		product, err := products.Create(ctx, repository.Product{Name: "Cable", Amount: 1500})
		require.NoError(t, err)
		gws, err := gateways.List(ctx)
		require.NoError(t, err)

		txn, err := transactions.Create(ctx, repository.Transaction{
			ClientID:        client.ID,
			GatewayID:       gws[0].ID,
			ExternalID:      "ext-1",
			Status:          repository.StatusPaid,
			Amount:          3000,
			CardLastNumbers: "6063",
			Items:           []repository.TransactionProduct{{ProductID: product.ID, Quantity: 2}},
		}, func(saved repository.Transaction) (*repository.OutboxEvent, error) {
			return &repository.OutboxEvent{
				EventID:   "3b5c7a0e-7c43-4c55-9a55-7d7e0f1d1a01",
				Topic:     "paymanager.purchases",
				EventType: "purchase.paid",
				Payload:   []byte(`{"event_type":"purchase.paid"}`),
			}, nil
		})
		require.NoError(t, err)

		got, err := transactions.GetByID(ctx, txn.ID)
		require.NoError(t, err)
		require.Equal(t, repository.StatusPaid, got.Status)
		require.Len(t, got.Items, 1)
		require.Equal(t, 2, got.Items[0].Quantity)

		pending, err := transactions.GetPendingOutboxEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.NoError(t, transactions.MarkOutboxEventSent(ctx, pending[0].EventID))

		require.NoError(t, transactions.MarkRefunded(ctx, txn.ID, nil))
		require.ErrorIs(t, transactions.MarkRefunded(ctx, txn.ID, nil), repository.ErrStatusConflict)
		require.ErrorIs(t, transactions.MarkRefunded(ctx, 999999, nil), repository.ErrNotFound)

		byClient, err := transactions.ListByClient(ctx, client.ID)
		require.NoError(t, err)
		require.Len(t, byClient, 1)
		require.Equal(t, repository.StatusRefunded, byClient[0].Status)
		require.Len(t, byClient[0].Items, 1)
	})

	t.Run("users keep password on update", func(t *testing.T) {
		u, err := users.Create(ctx, repository.User{Email: "adm@example.com", PasswordHash: "h", Role: repository.RoleAdmin})
		require.NoError(t, err)
		require.Empty(t, u.FullName)

		u, err = users.Update(ctx, repository.User{ID: u.ID, FullName: "Admin", Email: u.Email, Role: repository.RoleFinance})
		require.NoError(t, err)
		require.Equal(t, "h", u.PasswordHash)
		require.Equal(t, repository.RoleFinance, u.Role)

		_, err = users.Create(ctx, repository.User{Email: "adm@example.com", PasswordHash: "x", Role: repository.RoleUser})
		require.ErrorIs(t, err, repository.ErrAlreadyExists)
	})
}
