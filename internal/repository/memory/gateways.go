package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shestoi/paymanager/internal/repository"
)

// GatewayRepository настройки шлюзов в памяти
type GatewayRepository struct {
	mu       sync.RWMutex
	gateways map[int64]repository.Gateway
}

// NewGatewayRepository заполняет хранилище переданными шлюзами (id обязателен)
func NewGatewayRepository(gateways ...repository.Gateway) *GatewayRepository {
	r := &GatewayRepository{gateways: make(map[int64]repository.Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.ID] = g
	}
	return r
}

// DefaultGateways те же записи, что кладёт миграция seed_gateways
func DefaultGateways() []repository.Gateway {
	ts := now()
	return []repository.Gateway{
		{ID: 1, Name: "Gateway1", IsActive: true, Priority: 1, CreatedAt: ts, UpdatedAt: ts},
		{ID: 2, Name: "Gateway2", IsActive: true, Priority: 2, CreatedAt: ts, UpdatedAt: ts},
	}
}

func (r *GatewayRepository) List(ctx context.Context) ([]repository.Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.Gateway, 0, len(r.gateways))
	for _, g := range r.gateways {
		out = append(out, g)
	}
	sortByID(out, func(g repository.Gateway) int64 { return g.ID })
	return out, nil
}

func (r *GatewayRepository) ListActive(ctx context.Context) ([]repository.Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.Gateway, 0, len(r.gateways))
	for _, g := range r.gateways {
		if g.IsActive {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *GatewayRepository) GetByID(ctx context.Context, id int64) (repository.Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.gateways[id]
	if !ok {
		return repository.Gateway{}, repository.ErrNotFound
	}
	return g, nil
}

func (r *GatewayRepository) Update(ctx context.Context, gateway repository.Gateway) (repository.Gateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.gateways[gateway.ID]
	if !ok {
		return repository.Gateway{}, repository.ErrNotFound
	}
	existing.IsActive = gateway.IsActive
	existing.Priority = gateway.Priority
	existing.UpdatedAt = now()
	r.gateways[gateway.ID] = existing
	return existing, nil
}
