package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/repository"
)

// GatewayUpdate изменяемые настройки шлюза
type GatewayUpdate struct {
	IsActive *bool
	Priority *int
}

// GatewayService управление включением и приоритетом шлюзов
type GatewayService struct {
	logger *zap.Logger
	repo   repository.GatewayRepository
}

func NewGatewayService(logger *zap.Logger, repo repository.GatewayRepository) *GatewayService {
	return &GatewayService{logger: logger, repo: repo}
}

func (s *GatewayService) List(ctx context.Context) ([]repository.Gateway, error) {
	gws, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list gateways: %w", err)
	}
	return gws, nil
}

func (s *GatewayService) Get(ctx context.Context, id int64) (repository.Gateway, error) {
	gw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Gateway{}, notFound(err, "gateway")
	}
	return gw, nil
}

// Update новый порядок действует со следующей операции оплаты
func (s *GatewayService) Update(ctx context.Context, id int64, in GatewayUpdate) (repository.Gateway, error) {
	var errs fieldErrors
	if in.IsActive == nil {
		errs.add("isActive", "is required")
	}
	if in.Priority == nil || *in.Priority <= 0 {
		errs.add("priority", "must be greater than zero")
	}
	if err := errs.err(); err != nil {
		return repository.Gateway{}, err
	}

	gw, err := s.repo.Update(ctx, repository.Gateway{ID: id, IsActive: *in.IsActive, Priority: *in.Priority})
	if err != nil {
		return repository.Gateway{}, notFound(err, "gateway")
	}

	s.logger.Info("gateway updated",
		zap.Int64("gateway_id", gw.ID),
		zap.String("gateway", gw.Name),
		zap.Bool("is_active", gw.IsActive),
		zap.Int("priority", gw.Priority),
	)
	return gw, nil
}
