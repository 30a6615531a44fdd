package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/client/gateway"
	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/platform/observability"
)

// PurchaseItem позиция запроса на покупку
type PurchaseItem struct {
	ProductID int64
	Quantity  int
}

// PaymentInput данные покупателя и карты
type PaymentInput struct {
	Name       string
	Email      string
	CardNumber string
	CVV        string
}

// PurchaseInput запрос на покупку
type PurchaseInput struct {
	Items   []PurchaseItem
	Payment PaymentInput
}

// RefundPurchaseResult итог успешного возврата
type RefundPurchaseResult struct {
	TransactionID int64
	GatewayID     int64
	Message       string
}

// PurchaseLine позиция покупки вместе с товаром (товар мог быть удалён)
type PurchaseLine struct {
	Item    repository.TransactionProduct
	Product *repository.Product
}

// PurchaseDetails транзакция с клиентом, шлюзом и товарами
type PurchaseDetails struct {
	Transaction repository.Transaction
	Client      *repository.Client
	Gateway     *repository.Gateway
	Lines       []PurchaseLine
}

// PaymentProcessor проведение платежей и возвратов через шлюзы
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, req gateway.PaymentRequest) (PaymentOutcome, error)
	ProcessRefund(ctx context.Context, req RefundRequest) (RefundOutcome, error)
}

// PurchaseService покупка и возврат как одна логическая операция
type PurchaseService struct {
	logger      *zap.Logger
	validator   *ProductValidator
	resolver    *ClientResolver
	payments    PaymentProcessor
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	gatewayRepo repository.GatewayRepository
	txRepo      repository.TransactionRepository
	events      *EventBuilder
}

func NewPurchaseService(
	logger *zap.Logger,
	payments PaymentProcessor,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	gatewayRepo repository.GatewayRepository,
	txRepo repository.TransactionRepository,
	events *EventBuilder,
) *PurchaseService {
	return &PurchaseService{
		logger:      logger,
		validator:   NewProductValidator(productRepo),
		resolver:    NewClientResolver(logger, clientRepo),
		payments:    payments,
		productRepo: productRepo,
		clientRepo:  clientRepo,
		gatewayRepo: gatewayRepo,
		txRepo:      txRepo,
		events:      events,
	}
}

// ProcessPurchase проверка, товары, клиент, сумма, списание, запись.
// Транзакция создаётся только после успешного списания
func (s *PurchaseService) ProcessPurchase(ctx context.Context, rules PurchaseRules, in PurchaseInput) (repository.Transaction, error) {
	logger := observability.L(ctx, s.logger)

	if err := rules.Check(in); err != nil {
		return repository.Transaction{}, err
	}

	priced, err := s.validator.Validate(ctx, in.Items)
	if err != nil {
		return repository.Transaction{}, err
	}

	total, err := PurchaseTotal(priced)
	if err != nil {
		return repository.Transaction{}, err
	}
	items := make([]repository.TransactionProduct, 0, len(priced))
	for _, p := range priced {
		items = append(items, repository.TransactionProduct{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	client, err := s.resolver.GetOrCreate(ctx, ClientInput{Name: in.Payment.Name, Email: in.Payment.Email})
	if err != nil {
		return repository.Transaction{}, err
	}

	card := strings.TrimSpace(in.Payment.CardNumber)
	outcome, err := s.payments.ProcessPayment(ctx, gateway.PaymentRequest{
		Amount:     total,
		Name:       strings.TrimSpace(in.Payment.Name),
		Email:      client.Email,
		CardNumber: card,
		CVV:        strings.TrimSpace(in.Payment.CVV),
	})
	if err != nil {
		return repository.Transaction{}, fmt.Errorf("failed to process payment: %w", err)
	}
	if !outcome.Success {
		logger.Warn("purchase payment failed",
			zap.Int64("client_id", client.ID),
			zap.Int64("amount", total),
			zap.Int("attempts", len(outcome.Attempts)),
		)
		return repository.Transaction{}, &PaymentFailedError{Reason: outcome.Message, Attempts: outcome.Attempts}
	}

	saved, err := s.txRepo.Create(ctx, repository.Transaction{
		ClientID:        client.ID,
		GatewayID:       outcome.GatewayID,
		ExternalID:      outcome.ExternalID,
		Status:          repository.StatusPaid,
		Amount:          total,
		CardLastNumbers: lastFour(card),
		Items:           items,
	}, s.events.factory(EventPurchasePaid))
	if err != nil {
		// деньги уже списаны: без этой записи сверка со шлюзом невозможна
		logger.Error("charged purchase was not recorded",
			zap.Error(err),
			zap.Int64("client_id", client.ID),
			zap.Int64("gateway_id", outcome.GatewayID),
			zap.String("external_id", outcome.ExternalID),
			zap.Int64("amount", total),
		)
		return repository.Transaction{}, &PersistenceError{
			Op:         "record purchase",
			GatewayID:  outcome.GatewayID,
			ExternalID: outcome.ExternalID,
			Err:        err,
		}
	}

	logger.Info("purchase completed",
		zap.Int64("transaction_id", saved.ID),
		zap.Int64("client_id", client.ID),
		zap.Int64("gateway_id", saved.GatewayID),
		zap.Int64("amount", total),
	)
	return saved, nil
}

// RefundPurchase возврат оплаченной транзакции. Повторный возврат отклоняется с ErrAlreadyRefunded
func (s *PurchaseService) RefundPurchase(ctx context.Context, transactionID int64) (RefundPurchaseResult, error) {
	logger := observability.L(ctx, s.logger)

	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return RefundPurchaseResult{}, fmt.Errorf("%w: %d", ErrTransactionNotFound, transactionID)
		}
		return RefundPurchaseResult{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	if txn.Status == repository.StatusRefunded {
		return RefundPurchaseResult{}, ErrAlreadyRefunded
	}

	outcome, err := s.payments.ProcessRefund(ctx, RefundRequest{
		ExternalID:         txn.ExternalID,
		PreferredGatewayID: txn.GatewayID,
	})
	if err != nil {
		return RefundPurchaseResult{}, fmt.Errorf("failed to process refund: %w", err)
	}
	if !outcome.Success {
		return RefundPurchaseResult{}, &RefundFailedError{Reason: outcome.Message, Attempts: outcome.Attempts}
	}

	refunded := txn
	refunded.Status = repository.StatusRefunded
	event, err := s.events.Build(EventPurchaseRefunded, refunded)
	if err == nil {
		err = s.txRepo.MarkRefunded(ctx, transactionID, event)
	}
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			logger.Warn("transaction refunded concurrently", zap.Int64("transaction_id", transactionID))
			return RefundPurchaseResult{}, ErrAlreadyRefunded
		}
		logger.Error("refund accepted by gateway but not recorded",
			zap.Error(err),
			zap.Int64("transaction_id", transactionID),
			zap.Int64("gateway_id", outcome.GatewayID),
			zap.String("external_id", txn.ExternalID),
		)
		return RefundPurchaseResult{}, &PersistenceError{
			Op:            "record refund",
			TransactionID: transactionID,
			GatewayID:     outcome.GatewayID,
			ExternalID:    txn.ExternalID,
			Err:           err,
		}
	}

	logger.Info("purchase refunded",
		zap.Int64("transaction_id", transactionID),
		zap.Int64("gateway_id", outcome.GatewayID),
	)
	return RefundPurchaseResult{
		TransactionID: transactionID,
		GatewayID:     outcome.GatewayID,
		Message:       "refund processed",
	}, nil
}

// ListPurchases все транзакции с позициями
func (s *PurchaseService) ListPurchases(ctx context.Context) ([]repository.Transaction, error) {
	txns, err := s.txRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// GetPurchase транзакция с клиентом, шлюзом и товарами позиций
func (s *PurchaseService) GetPurchase(ctx context.Context, transactionID int64) (PurchaseDetails, error) {
	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return PurchaseDetails{}, fmt.Errorf("%w: %d", ErrTransactionNotFound, transactionID)
		}
		return PurchaseDetails{}, fmt.Errorf("failed to get transaction: %w", err)
	}

	details := PurchaseDetails{Transaction: txn, Lines: make([]PurchaseLine, 0, len(txn.Items))}

	client, err := s.clientRepo.GetByID(ctx, txn.ClientID)
	switch {
	case err == nil:
		details.Client = &client
	case !errors.Is(err, repository.ErrNotFound):
		return PurchaseDetails{}, fmt.Errorf("failed to get client: %w", err)
	}

	if txn.GatewayID != 0 {
		gw, err := s.gatewayRepo.GetByID(ctx, txn.GatewayID)
		switch {
		case err == nil:
			details.Gateway = &gw
		case !errors.Is(err, repository.ErrNotFound):
			return PurchaseDetails{}, fmt.Errorf("failed to get gateway: %w", err)
		}
	}

	ids := make([]int64, 0, len(txn.Items))
	for _, it := range txn.Items {
		if it.ProductID != 0 {
			ids = append(ids, it.ProductID)
		}
	}
	byID := make(map[int64]repository.Product, len(ids))
	if len(ids) > 0 {
		products, err := s.productRepo.GetByIDs(ctx, ids)
		if err != nil {
			return PurchaseDetails{}, fmt.Errorf("failed to load products: %w", err)
		}
		for _, p := range products {
			byID[p.ID] = p
		}
	}
	for _, it := range txn.Items {
		line := PurchaseLine{Item: it}
		if p, ok := byID[it.ProductID]; ok {
			line.Product = &p
		}
		details.Lines = append(details.Lines, line)
	}

	return details, nil
}

// lastFour последние четыре цифры карты; более короткий номер сохраняется целиком
func lastFour(card string) string {
	if len(card) <= 4 {
		return card
	}
	return card[len(card)-4:]
}
