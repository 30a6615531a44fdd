package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/repository/memory"
)

func TestNormalizePage(t *testing.T) {
	assert.Equal(t, repository.Page{Number: 1, Limit: 10}, NormalizePage(0, 0))
	assert.Equal(t, repository.Page{Number: 3, Limit: 100}, NormalizePage(3, 500))
	assert.Equal(t, repository.Page{Number: 2, Limit: 25}, NormalizePage(2, 25))
}

func TestProductService(t *testing.T) {
	ctx := context.Background()
	svc := NewProductService(zap.NewNop(), memory.NewProductRepository())

	amount := int64(1500)
	p, err := svc.Create(ctx, ProductInput{Name: strPtr(" Keyboard "), Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", p.Name)

	_, err = svc.Create(ctx, ProductInput{Name: strPtr("Keyboard")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Fields[0].Field)

	bad := int64(0)
	_, err = svc.Create(ctx, ProductInput{Name: strPtr("ab"), Amount: &bad})
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	newAmount := int64(1700)
	updated, err := svc.Update(ctx, p.ID, ProductInput{Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", updated.Name)
	assert.Equal(t, int64(1700), updated.Amount)

	res, err := svc.List(ctx, repository.ProductFilter{Name: "key"}, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 10, res.Page.Limit)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, p.ID, ProductInput{Amount: &newAmount})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGatewayService_Update(t *testing.T) {
	ctx := context.Background()
	svc := NewGatewayService(zap.NewNop(), memory.NewGatewayRepository(memory.DefaultGateways()...))

	active := false
	priority := 3
	gw, err := svc.Update(ctx, 1, GatewayUpdate{IsActive: &active, Priority: &priority})
	require.NoError(t, err)
	assert.False(t, gw.IsActive)
	assert.Equal(t, 3, gw.Priority)
	assert.Equal(t, "Gateway1", gw.Name)

	zero := 0
	_, err = svc.Update(ctx, 1, GatewayUpdate{IsActive: &active, Priority: &zero})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "priority", verr.Fields[0].Field)

	_, err = svc.Update(ctx, 9, GatewayUpdate{IsActive: &active, Priority: &priority})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestClientService_GetWithTransactions(t *testing.T) {
	ctx := context.Background()
	clients := memory.NewClientRepository()
	txns := memory.NewTransactionRepository()
	svc := NewClientService(clients, txns)

	c, err := clients.Create(ctx, repository.Client{Name: "Ana", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = txns.Create(ctx, repository.Transaction{
		ClientID: c.ID,
		Status:   repository.StatusPaid,
		Amount:   3000,
		Items:    []repository.TransactionProduct{{ProductID: 1, Quantity: 2}},
	}, nil)
	require.NoError(t, err)

	details, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", details.Client.Name)
	require.Len(t, details.Transactions, 1)
	assert.Len(t, details.Transactions[0].Items, 1)

	_, err = svc.Get(ctx, 77)
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := svc.List(ctx, repository.ClientFilter{Email: "x.com"}, repository.Page{Number: 1, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 100, page.Page.Limit)
}
