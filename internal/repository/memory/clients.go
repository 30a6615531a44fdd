package memory

import (
	"context"
	"sync"

	"github.com/shestoi/paymanager/internal/repository"
)

// ClientRepository клиенты в памяти; уникальность email как у индекса в postgres
type ClientRepository struct {
	mu      sync.RWMutex
	nextID  int64
	clients map[int64]repository.Client
	byEmail map[string]int64
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{
		clients: make(map[int64]repository.Client),
		byEmail: make(map[string]int64),
	}
}

func (r *ClientRepository) Create(ctx context.Context, client repository.Client) (repository.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[client.Email]; taken {
		return repository.Client{}, repository.ErrAlreadyExists
	}

	r.nextID++
	client.ID = r.nextID
	client.CreatedAt = now()
	client.UpdatedAt = client.CreatedAt
	r.clients[client.ID] = client
	r.byEmail[client.Email] = client.ID
	return client, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (repository.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return repository.Client{}, repository.ErrNotFound
	}
	return c, nil
}

func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (repository.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return repository.Client{}, repository.ErrNotFound
	}
	return r.clients[id], nil
}

func (r *ClientRepository) List(ctx context.Context, filter repository.ClientFilter, page repository.Page) (repository.PageResult[repository.Client], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]repository.Client, 0, len(r.clients))
	for _, c := range r.clients {
		if filter.Name != "" && !containsFold(c.Name, filter.Name) {
			continue
		}
		if filter.Email != "" && !containsFold(c.Email, filter.Email) {
			continue
		}
		all = append(all, c)
	}
	sortByID(all, func(c repository.Client) int64 { return c.ID })
	return paginate(all, page), nil
}
