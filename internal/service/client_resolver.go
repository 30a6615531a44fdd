package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/repository"
)

// ClientInput данные покупателя из запроса
type ClientInput struct {
	Name  string
	Email string
}

// ClientResolver находит клиента по email или создаёт нового
type ClientResolver struct {
	logger *zap.Logger
	repo   repository.ClientRepository
}

func NewClientResolver(logger *zap.Logger, repo repository.ClientRepository) *ClientResolver {
	return &ClientResolver{logger: logger, repo: repo}
}

// GetOrCreate идемпотентен по email. При гонке двух запросов уникальный индекс
// отклоняет второй Create, и мы перечитываем уже созданную запись
func (r *ClientResolver) GetOrCreate(ctx context.Context, in ClientInput) (repository.Client, error) {
	email := normalizeEmail(in.Email)

	client, err := r.repo.GetByEmail(ctx, email)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return repository.Client{}, fmt.Errorf("failed to get client by email: %w", err)
	}

	client, err = r.repo.Create(ctx, repository.Client{Name: strings.TrimSpace(in.Name), Email: email})
	if err == nil {
		r.logger.Info("client created", zap.Int64("client_id", client.ID))
		return client, nil
	}
	if !errors.Is(err, repository.ErrAlreadyExists) {
		return repository.Client{}, fmt.Errorf("failed to create client: %w", err)
	}

	client, err = r.repo.GetByEmail(ctx, email)
	if err != nil {
		return repository.Client{}, fmt.Errorf("failed to re-read client after conflict: %w", err)
	}
	return client, nil
}
