package service

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/client/gateway"
	"github.com/shestoi/paymanager/internal/repository"
)

// ActiveGateway включённый шлюз вместе с его адаптером
type ActiveGateway struct {
	ID       int64
	Name     string
	Priority int
	Adapter  gateway.Adapter
}

// GatewaySelector упорядоченный набор шлюзов для очередной операции
type GatewaySelector interface {
	ActiveGateways(ctx context.Context) (iter.Seq[ActiveGateway], error)
}

// GatewayRegistry сопоставляет записи gateways с адаптерами по имени.
// Таблица адаптеров собирается один раз в конструкторе и дальше только читается
type GatewayRegistry struct {
	logger   *zap.Logger
	repo     repository.GatewayRepository
	adapters map[string]gateway.Adapter
}

func NewGatewayRegistry(logger *zap.Logger, repo repository.GatewayRepository, adapters ...gateway.Adapter) *GatewayRegistry {
	table := make(map[string]gateway.Adapter, len(adapters))
	for _, a := range adapters {
		table[a.Name()] = a
	}
	return &GatewayRegistry{
		logger:   logger,
		repo:     repo,
		adapters: table,
	}
}

// ActiveGateways включённые шлюзы по возрастанию priority, при равенстве по id.
// Последовательность ленивая и её можно обойти повторно; шлюзы без адаптера пропускаются
func (r *GatewayRegistry) ActiveGateways(ctx context.Context) (iter.Seq[ActiveGateway], error) {
	records, err := r.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active gateways: %w", err)
	}

	slices.SortStableFunc(records, func(a, b repository.Gateway) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return func(yield func(ActiveGateway) bool) {
		for _, rec := range records {
			if !rec.IsActive {
				continue
			}
			adapter, ok := r.adapters[rec.Name]
			if !ok {
				r.logger.Debug("gateway has no adapter, skipping",
					zap.Int64("gateway_id", rec.ID),
					zap.String("gateway", rec.Name),
				)
				continue
			}
			if !yield(ActiveGateway{ID: rec.ID, Name: rec.Name, Priority: rec.Priority, Adapter: adapter}) {
				return
			}
		}
	}, nil
}
