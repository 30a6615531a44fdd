package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// NormalizePage подставляет значения по умолчанию и ограничивает limit
func NormalizePage(number, limit int) repository.Page {
	if number < 1 {
		number = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return repository.Page{Number: number, Limit: limit}
}

// ProductInput поля товара; nil означает "не менять" при обновлении
type ProductInput struct {
	Name   *string
	Amount *int64
}

// ProductService CRUD товаров
type ProductService struct {
	logger *zap.Logger
	repo   repository.ProductRepository
}

func NewProductService(logger *zap.Logger, repo repository.ProductRepository) *ProductService {
	return &ProductService{logger: logger, repo: repo}
}

func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter, page repository.Page) (repository.PageResult[repository.Product], error) {
	filter.Name = strings.TrimSpace(filter.Name)
	res, err := s.repo.List(ctx, filter, NormalizePage(page.Number, page.Limit))
	if err != nil {
		return repository.PageResult[repository.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}
	return res, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (repository.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Product{}, notFound(err, "product")
	}
	return p, nil
}

// Create оба поля обязательны
func (s *ProductService) Create(ctx context.Context, in ProductInput) (repository.Product, error) {
	var errs fieldErrors
	if in.Name == nil {
		errs.add("name", "is required")
	}
	if in.Amount == nil {
		errs.add("amount", "is required")
	}
	if err := errs.err(); err != nil {
		return repository.Product{}, err
	}
	checkProduct(*in.Name, *in.Amount, &errs)
	if err := errs.err(); err != nil {
		return repository.Product{}, err
	}

	p, err := s.repo.Create(ctx, repository.Product{Name: strings.TrimSpace(*in.Name), Amount: *in.Amount})
	if err != nil {
		return repository.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.Info("product created", zap.Int64("product_id", p.ID))
	return p, nil
}

// Update частичное обновление
func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput) (repository.Product, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Product{}, notFound(err, "product")
	}
	if in.Name != nil {
		current.Name = strings.TrimSpace(*in.Name)
	}
	if in.Amount != nil {
		current.Amount = *in.Amount
	}

	var errs fieldErrors
	checkProduct(current.Name, current.Amount, &errs)
	if err := errs.err(); err != nil {
		return repository.Product{}, err
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return repository.Product{}, notFound(err, "product")
	}
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "product")
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// notFound переводит repository.ErrNotFound в ErrNotFound сервиса, остальное оборачивает
func notFound(err error, entity string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return fmt.Errorf("%s storage: %w", entity, err)
}
