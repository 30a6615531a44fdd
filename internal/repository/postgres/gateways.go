package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/paymanager/internal/repository"
)

const gatewayColumns = `id, name, is_active, priority, created_at, updated_at`

// GatewayRepository реализует repository.GatewayRepository на PostgreSQL
type GatewayRepository struct {
	pool *pgxpool.Pool
}

func NewGatewayRepository(pool *pgxpool.Pool) *GatewayRepository {
	return &GatewayRepository{pool: pool}
}

func scanGateway(row pgx.Row) (repository.Gateway, error) {
	var g repository.Gateway
	err := row.Scan(&g.ID, &g.Name, &g.IsActive, &g.Priority, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (r *GatewayRepository) List(ctx context.Context) ([]repository.Gateway, error) {
	return r.query(ctx, `SELECT `+gatewayColumns+` FROM gateways ORDER BY id`)
}

func (r *GatewayRepository) ListActive(ctx context.Context) ([]repository.Gateway, error) {
	return r.query(ctx, `SELECT `+gatewayColumns+` FROM gateways WHERE is_active ORDER BY priority, id`)
}

func (r *GatewayRepository) GetByID(ctx context.Context, id int64) (repository.Gateway, error) {
	g, err := scanGateway(r.pool.QueryRow(ctx,
		`SELECT `+gatewayColumns+` FROM gateways WHERE id = $1`, id))
	if err != nil {
		return repository.Gateway{}, mapError(err)
	}
	return g, nil
}

// Update меняет только is_active и priority, имя шлюза неизменно
func (r *GatewayRepository) Update(ctx context.Context, gateway repository.Gateway) (repository.Gateway, error) {
	g, err := scanGateway(r.pool.QueryRow(ctx,
		`UPDATE gateways SET is_active = $2, priority = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+gatewayColumns,
		gateway.ID, gateway.IsActive, gateway.Priority))
	if err != nil {
		return repository.Gateway{}, mapError(err)
	}
	return g, nil
}

func (r *GatewayRepository) query(ctx context.Context, sql string, args ...any) ([]repository.Gateway, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.Gateway, 0)
	for rows.Next() {
		g, err := scanGateway(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
