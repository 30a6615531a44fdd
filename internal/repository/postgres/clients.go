package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/paymanager/internal/repository"
)

const clientColumns = `id, name, email, created_at, updated_at`

// ClientRepository реализует repository.ClientRepository на PostgreSQL
type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func scanClient(row pgx.Row) (repository.Client, error) {
	var c repository.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create возвращает ErrAlreadyExists при гонке за один email (unique_violation)
func (r *ClientRepository) Create(ctx context.Context, client repository.Client) (repository.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`INSERT INTO clients (name, email) VALUES ($1, $2)
		 RETURNING `+clientColumns,
		client.Name, client.Email))
	if err != nil {
		return repository.Client{}, mapError(err)
	}
	return c, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (repository.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return repository.Client{}, mapError(err)
	}
	return c, nil
}

func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (repository.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE email = $1`, email))
	if err != nil {
		return repository.Client{}, mapError(err)
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context, filter repository.ClientFilter, page repository.Page) (repository.PageResult[repository.Client], error) {
	var (
		conds []string
		args  []any
	)
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, "%"+filter.Email+"%")
		conds = append(conds, fmt.Sprintf("email ILIKE $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	res := repository.PageResult[repository.Client]{Page: page, Items: []repository.Client{}}
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM clients`+where, args...).Scan(&res.Total); err != nil {
		return res, err
	}

	args = append(args, page.Limit, page.Offset())
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM clients%s ORDER BY id LIMIT $%d OFFSET $%d`,
			clientColumns, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return res, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return res, err
		}
		res.Items = append(res.Items, c)
	}
	return res, rows.Err()
}
