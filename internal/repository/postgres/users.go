package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/paymanager/internal/repository"
)

const userColumns = `id, COALESCE(full_name, ''), email, password_hash, role, created_at, updated_at`

// UserRepository реализует repository.UserRepository на PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *UserRepository) Create(ctx context.Context, user repository.User) (repository.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users (full_name, email, password_hash, role) VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		nullable(user.FullName), user.Email, user.PasswordHash, user.Role))
	if err != nil {
		return repository.User{}, mapError(err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (repository.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return repository.User{}, mapError(err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return repository.User{}, mapError(err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]repository.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update пустой PasswordHash оставляет прежний пароль
func (r *UserRepository) Update(ctx context.Context, user repository.User) (repository.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET
		   full_name = $2,
		   email = $3,
		   role = $4,
		   password_hash = COALESCE(NULLIF($5::text, ''), password_hash),
		   updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		user.ID, nullable(user.FullName), user.Email, user.Role, user.PasswordHash))
	if err != nil {
		return repository.User{}, mapError(err)
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
