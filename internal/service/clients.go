package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shestoi/paymanager/internal/repository"
)

// ClientDetails клиент со всеми его транзакциями
type ClientDetails struct {
	Client       repository.Client
	Transactions []repository.Transaction
}

// ClientService чтение клиентов; создаются они только через покупку
type ClientService struct {
	repo   repository.ClientRepository
	txRepo repository.TransactionRepository
}

func NewClientService(repo repository.ClientRepository, txRepo repository.TransactionRepository) *ClientService {
	return &ClientService{repo: repo, txRepo: txRepo}
}

func (s *ClientService) List(ctx context.Context, filter repository.ClientFilter, page repository.Page) (repository.PageResult[repository.Client], error) {
	filter.Name = strings.TrimSpace(filter.Name)
	filter.Email = strings.TrimSpace(filter.Email)
	res, err := s.repo.List(ctx, filter, NormalizePage(page.Number, page.Limit))
	if err != nil {
		return repository.PageResult[repository.Client]{}, fmt.Errorf("failed to list clients: %w", err)
	}
	return res, nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (ClientDetails, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ClientDetails{}, notFound(err, "client")
	}
	txns, err := s.txRepo.ListByClient(ctx, id)
	if err != nil {
		return ClientDetails{}, fmt.Errorf("failed to list client transactions: %w", err)
	}
	return ClientDetails{Client: client, Transactions: txns}, nil
}
