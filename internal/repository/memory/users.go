package memory

import (
	"context"
	"sync"

	"github.com/shestoi/paymanager/internal/repository"
)

// UserRepository пользователи панели в памяти
type UserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]repository.User
	byEmail map[string]int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[int64]repository.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UserRepository) Create(ctx context.Context, user repository.User) (repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return repository.User{}, repository.ErrAlreadyExists
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return r.users[id], nil
}

func (r *UserRepository) List(ctx context.Context) ([]repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sortByID(out, func(u repository.User) int64 { return u.ID })
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, user repository.User) (repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	if user.Email != existing.Email {
		if _, taken := r.byEmail[user.Email]; taken {
			return repository.User{}, repository.ErrAlreadyExists
		}
		delete(r.byEmail, existing.Email)
		r.byEmail[user.Email] = user.ID
	}

	existing.FullName = user.FullName
	existing.Email = user.Email
	existing.Role = user.Role
	if user.PasswordHash != "" {
		existing.PasswordHash = user.PasswordHash
	}
	existing.UpdatedAt = now()
	r.users[user.ID] = existing
	return existing, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.users, id)
	return nil
}
