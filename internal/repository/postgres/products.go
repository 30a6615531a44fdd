package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/paymanager/internal/repository"
)

const productColumns = `id, name, amount, created_at, updated_at`

// ProductRepository реализует repository.ProductRepository на PostgreSQL
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (repository.Product, error) {
	var p repository.Product
	err := row.Scan(&p.ID, &p.Name, &p.Amount, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepository) Create(ctx context.Context, product repository.Product) (repository.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`INSERT INTO products (name, amount) VALUES ($1, $2)
		 RETURNING `+productColumns,
		product.Name, product.Amount))
	if err != nil {
		return repository.Product{}, mapError(err)
	}
	return p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (repository.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return repository.Product{}, mapError(err)
	}
	return p, nil
}

// GetByIDs одним запросом через ANY($1)
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]repository.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter, page repository.Page) (repository.PageResult[repository.Product], error) {
	var (
		conds []string
		args  []any
	)
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Amount != nil {
		args = append(args, *filter.Amount)
		conds = append(conds, fmt.Sprintf("amount = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	res := repository.PageResult[repository.Product]{Page: page, Items: []repository.Product{}}
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&res.Total); err != nil {
		return res, err
	}

	args = append(args, page.Limit, page.Offset())
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM products%s ORDER BY id LIMIT $%d OFFSET $%d`,
			productColumns, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return res, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return res, err
		}
		res.Items = append(res.Items, p)
	}
	return res, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, product repository.Product) (repository.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`UPDATE products SET name = $2, amount = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		product.ID, product.Name, product.Amount))
	if err != nil {
		return repository.Product{}, mapError(err)
	}
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
