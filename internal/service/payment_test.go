package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/client/gateway"
	gwmocks "github.com/shestoi/paymanager/internal/client/gateway/mocks"
	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/repository/memory"
	"github.com/shestoi/paymanager/internal/repository/mocks"
)

func newAdapter(t *testing.T, name string) *gwmocks.Adapter {
	a := gwmocks.NewAdapter(t)
	a.On("Name").Return(name)
	return a
}

func newOrchestrator(repo repository.GatewayRepository, adapters ...gateway.Adapter) *PaymentOrchestrator {
	logger := zap.NewNop()
	return NewPaymentOrchestrator(logger, NewGatewayRegistry(logger, repo, adapters...))
}

var chargeReq = gateway.PaymentRequest{Amount: 3000, Name: "Ana", Email: "a@x.com", CardNumber: "5569000000006063", CVV: "010"}

func TestPaymentOrchestrator_ProcessPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("first gateway succeeds, second is never called", func(t *testing.T) {
		g1 := newAdapter(t, "Gateway1")
		g2 := newAdapter(t, "Gateway2")
		g1.On("SubmitPayment", mock.Anything, chargeReq).Return(gateway.PaymentResult{OK: true, ExternalID: "g1-1"}).Once()

		o := newOrchestrator(memory.NewGatewayRepository(memory.DefaultGateways()...), g1, g2)

		out, err := o.ProcessPayment(ctx, chargeReq)
		require.NoError(t, err)
		assert.True(t, out.Success)
		assert.Equal(t, int64(1), out.GatewayID)
		assert.Equal(t, "g1-1", out.ExternalID)
		assert.Empty(t, out.Attempts)
		g2.AssertNotCalled(t, "SubmitPayment", mock.Anything, mock.Anything)
	})

	t.Run("falls over to next gateway and keeps the failure", func(t *testing.T) {
		g1 := newAdapter(t, "Gateway1")
		g2 := newAdapter(t, "Gateway2")
		g1.On("SubmitPayment", mock.Anything, chargeReq).Return(gateway.PaymentResult{Reason: "invalid card"}).Once()
		g2.On("SubmitPayment", mock.Anything, chargeReq).Return(gateway.PaymentResult{OK: true, ExternalID: "g2-1"}).Once()

		o := newOrchestrator(memory.NewGatewayRepository(memory.DefaultGateways()...), g1, g2)

		out, err := o.ProcessPayment(ctx, chargeReq)
		require.NoError(t, err)
		require.True(t, out.Success)
		assert.Equal(t, int64(2), out.GatewayID)
		assert.Equal(t, "Gateway2", out.GatewayName)
		assert.Equal(t, []Attempt{{GatewayID: 1, Gateway: "Gateway1", Reason: "invalid card"}}, out.Attempts)
	})

	t.Run("all gateways fail", func(t *testing.T) {
		g1 := newAdapter(t, "Gateway1")
		g2 := newAdapter(t, "Gateway2")
		g1.On("SubmitPayment", mock.Anything, chargeReq).Return(gateway.PaymentResult{Reason: "timeout"}).Once()
		g2.On("SubmitPayment", mock.Anything, chargeReq).Return(gateway.PaymentResult{Reason: "cvv inválido"}).Once()

		o := newOrchestrator(memory.NewGatewayRepository(memory.DefaultGateways()...), g1, g2)

		out, err := o.ProcessPayment(ctx, chargeReq)
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Equal(t, MsgAllGatewaysFailed, out.Message)
		require.Len(t, out.Attempts, 2)
		assert.Equal(t, "Gateway1", out.Attempts[0].Gateway)
		assert.Equal(t, "Gateway2", out.Attempts[1].Gateway)
	})

	t.Run("priority change reorders attempts", func(t *testing.T) {
		g1 := newAdapter(t, "Gateway1")
		g2 := newAdapter(t, "Gateway2")
		g2.On("SubmitPayment", mock.Anything, chargeReq).Return(gateway.PaymentResult{OK: true, ExternalID: "g2-1"}).Once()

		repo := memory.NewGatewayRepository(memory.DefaultGateways()...)
		_, err := repo.Update(ctx, repository.Gateway{ID: 1, IsActive: true, Priority: 5})
		require.NoError(t, err)

		out, err := newOrchestrator(repo, g1, g2).ProcessPayment(ctx, chargeReq)
		require.NoError(t, err)
		assert.Equal(t, int64(2), out.GatewayID)
	})

	t.Run("inactive gateways and gateways without adapter are skipped", func(t *testing.T) {
		g2 := newAdapter(t, "Gateway2")
		g2.On("SubmitPayment", mock.Anything, chargeReq).Return(gateway.PaymentResult{OK: true, ExternalID: "g2-1"}).Once()

		repo := memory.NewGatewayRepository(
			repository.Gateway{ID: 1, Name: "Gateway1", IsActive: false, Priority: 1},
			repository.Gateway{ID: 2, Name: "Gateway2", IsActive: true, Priority: 2},
			repository.Gateway{ID: 3, Name: "Gateway3", IsActive: true, Priority: 1},
		)

		out, err := newOrchestrator(repo, g2).ProcessPayment(ctx, chargeReq)
		require.NoError(t, err)
		assert.Equal(t, int64(2), out.GatewayID)
		assert.Empty(t, out.Attempts)
	})

	t.Run("no active gateways", func(t *testing.T) {
		out, err := newOrchestrator(memory.NewGatewayRepository()).ProcessPayment(ctx, chargeReq)
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Empty(t, out.Attempts)
	})

	t.Run("gateway storage error", func(t *testing.T) {
		repo := mocks.NewGatewayRepository(t)
		repo.On("ListActive", mock.Anything).Return(nil, errors.New("db down")).Once()

		_, err := newOrchestrator(repo).ProcessPayment(ctx, chargeReq)
		require.Error(t, err)
	})

	t.Run("canceled context stops before any gateway call", func(t *testing.T) {
		g1 := newAdapter(t, "Gateway1")
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newOrchestrator(memory.NewGatewayRepository(memory.DefaultGateways()...), g1).ProcessPayment(cctx, chargeReq)
		require.ErrorIs(t, err, context.Canceled)
		g1.AssertNotCalled(t, "SubmitPayment", mock.Anything, mock.Anything)
	})
}

func TestPaymentOrchestrator_ProcessRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("original gateway is tried first", func(t *testing.T) {
		g1 := newAdapter(t, "Gateway1")
		g2 := newAdapter(t, "Gateway2")
		g2.On("SubmitRefund", mock.Anything, "g2-1").Return(gateway.RefundResult{OK: true}).Once()

		o := newOrchestrator(memory.NewGatewayRepository(memory.DefaultGateways()...), g1, g2)

		out, err := o.ProcessRefund(ctx, RefundRequest{ExternalID: "g2-1", PreferredGatewayID: 2})
		require.NoError(t, err)
		assert.True(t, out.Success)
		assert.Equal(t, int64(2), out.GatewayID)
		g1.AssertNotCalled(t, "SubmitRefund", mock.Anything, mock.Anything)
	})

	t.Run("falls back to the rest in priority order", func(t *testing.T) {
		g1 := newAdapter(t, "Gateway1")
		g2 := newAdapter(t, "Gateway2")
		g2.On("SubmitRefund", mock.Anything, "ext-1").Return(gateway.RefundResult{Reason: "Gateway2 status 404"}).Once()
		g1.On("SubmitRefund", mock.Anything, "ext-1").Return(gateway.RefundResult{OK: true}).Once()

		o := newOrchestrator(memory.NewGatewayRepository(memory.DefaultGateways()...), g1, g2)

		out, err := o.ProcessRefund(ctx, RefundRequest{ExternalID: "ext-1", PreferredGatewayID: 2})
		require.NoError(t, err)
		require.True(t, out.Success)
		assert.Equal(t, int64(1), out.GatewayID)
		require.Len(t, out.Attempts, 1)
		assert.Equal(t, int64(2), out.Attempts[0].GatewayID)
	})

	t.Run("inactive original gateway is not used", func(t *testing.T) {
		g1 := newAdapter(t, "Gateway1")
		g2 := newAdapter(t, "Gateway2")
		g1.On("SubmitRefund", mock.Anything, "ext-1").Return(gateway.RefundResult{OK: true}).Once()

		repo := memory.NewGatewayRepository(
			repository.Gateway{ID: 1, Name: "Gateway1", IsActive: true, Priority: 1},
			repository.Gateway{ID: 2, Name: "Gateway2", IsActive: false, Priority: 2},
		)

		out, err := newOrchestrator(repo, g1, g2).ProcessRefund(ctx, RefundRequest{ExternalID: "ext-1", PreferredGatewayID: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(1), out.GatewayID)
		g2.AssertNotCalled(t, "SubmitRefund", mock.Anything, mock.Anything)
	})

	t.Run("every gateway refuses", func(t *testing.T) {
		g1 := newAdapter(t, "Gateway1")
		g2 := newAdapter(t, "Gateway2")
		g1.On("SubmitRefund", mock.Anything, "ext-1").Return(gateway.RefundResult{Reason: "no"}).Once()
		g2.On("SubmitRefund", mock.Anything, "ext-1").Return(gateway.RefundResult{Reason: "no"}).Once()

		out, err := newOrchestrator(memory.NewGatewayRepository(memory.DefaultGateways()...), g1, g2).
			ProcessRefund(ctx, RefundRequest{ExternalID: "ext-1", PreferredGatewayID: 1})
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Equal(t, MsgAllGatewaysFailed, out.Message)
		assert.Len(t, out.Attempts, 2)
	})
}
