package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/client/gateway"
	"github.com/shestoi/paymanager/platform/observability"
)

const instrumentationName = "github.com/shestoi/paymanager/internal/service"

const (
	opPayment = "payment"
	opRefund  = "refund"
)

// PaymentOutcome итог списания. При Success заполнены GatewayID и ExternalID
type PaymentOutcome struct {
	Success     bool
	GatewayID   int64
	GatewayName string
	ExternalID  string
	Message     string
	Attempts    []Attempt
}

// RefundRequest данные возврата. PreferredGatewayID шлюз исходного платежа, пробуется первым
type RefundRequest struct {
	ExternalID         string
	PreferredGatewayID int64
}

// RefundOutcome итог возврата
type RefundOutcome struct {
	Success     bool
	GatewayID   int64
	GatewayName string
	Message     string
	Attempts    []Attempt
}

// PaymentOrchestrator перебирает шлюзы по порядку до первого успеха
type PaymentOrchestrator struct {
	logger   *zap.Logger
	selector GatewaySelector
	tracer   trace.Tracer
	attempts metric.Int64Counter
}

func NewPaymentOrchestrator(logger *zap.Logger, selector GatewaySelector) *PaymentOrchestrator {
	meter := otel.Meter(instrumentationName)
	counter, err := meter.Int64Counter("paymanager.gateway.attempts",
		metric.WithDescription("Gateway calls by gateway, operation and outcome"),
	)
	if err != nil {
		logger.Warn("failed to create gateway attempts counter", zap.Error(err))
	}
	return &PaymentOrchestrator{
		logger:   logger,
		selector: selector,
		tracer:   otel.Tracer(instrumentationName),
		attempts: counter,
	}
}

// ProcessPayment пробует шлюзы строго последовательно; после первого успеха остальные не вызываются.
// error возвращается только при сбое инфраструктуры (список шлюзов) или отмене контекста
func (o *PaymentOrchestrator) ProcessPayment(ctx context.Context, req gateway.PaymentRequest) (PaymentOutcome, error) {
	logger := observability.L(ctx, o.logger)

	gateways, err := o.selector.ActiveGateways(ctx)
	if err != nil {
		return PaymentOutcome{}, err
	}

	var attempts []Attempt
	for gw := range gateways {
		if err := ctx.Err(); err != nil {
			return PaymentOutcome{Message: MsgAllGatewaysFailed, Attempts: attempts}, err
		}

		res := o.submitPayment(ctx, gw, req)
		if res.OK {
			logger.Info("payment accepted",
				zap.Int64("gateway_id", gw.ID),
				zap.String("gateway", gw.Name),
				zap.String("external_id", res.ExternalID),
				zap.Int("failed_attempts", len(attempts)),
			)
			return PaymentOutcome{
				Success:     true,
				GatewayID:   gw.ID,
				GatewayName: gw.Name,
				ExternalID:  res.ExternalID,
				Attempts:    attempts,
			}, nil
		}

		logger.Warn("gateway rejected payment",
			zap.Int64("gateway_id", gw.ID),
			zap.String("gateway", gw.Name),
			zap.String("reason", res.Reason),
		)
		attempts = append(attempts, Attempt{GatewayID: gw.ID, Gateway: gw.Name, Reason: res.Reason})
	}

	return PaymentOutcome{Message: MsgAllGatewaysFailed, Attempts: attempts}, nil
}

// ProcessRefund тот же порядок перебора, но шлюз исходного платежа (если он активен) идёт первым
func (o *PaymentOrchestrator) ProcessRefund(ctx context.Context, req RefundRequest) (RefundOutcome, error) {
	logger := observability.L(ctx, o.logger)

	gateways, err := o.selector.ActiveGateways(ctx)
	if err != nil {
		return RefundOutcome{}, err
	}

	var attempts []Attempt
	try := func(gw ActiveGateway) (RefundOutcome, bool) {
		res := o.submitRefund(ctx, gw, req.ExternalID)
		if res.OK {
			logger.Info("refund accepted",
				zap.Int64("gateway_id", gw.ID),
				zap.String("gateway", gw.Name),
				zap.String("external_id", req.ExternalID),
			)
			return RefundOutcome{Success: true, GatewayID: gw.ID, GatewayName: gw.Name, Attempts: attempts}, true
		}
		logger.Warn("gateway rejected refund",
			zap.Int64("gateway_id", gw.ID),
			zap.String("gateway", gw.Name),
			zap.String("reason", res.Reason),
		)
		attempts = append(attempts, Attempt{GatewayID: gw.ID, Gateway: gw.Name, Reason: res.Reason})
		return RefundOutcome{}, false
	}

	if req.PreferredGatewayID != 0 {
		for gw := range gateways {
			if gw.ID != req.PreferredGatewayID {
				continue
			}
			if err := ctx.Err(); err != nil {
				return RefundOutcome{Message: MsgAllGatewaysFailed, Attempts: attempts}, err
			}
			if out, ok := try(gw); ok {
				return out, nil
			}
			break
		}
	}

	for gw := range gateways {
		if gw.ID == req.PreferredGatewayID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return RefundOutcome{Message: MsgAllGatewaysFailed, Attempts: attempts}, err
		}
		if out, ok := try(gw); ok {
			return out, nil
		}
	}

	return RefundOutcome{Message: MsgAllGatewaysFailed, Attempts: attempts}, nil
}

func (o *PaymentOrchestrator) submitPayment(ctx context.Context, gw ActiveGateway, req gateway.PaymentRequest) gateway.PaymentResult {
	ctx, span := o.startAttempt(ctx, gw, opPayment)
	defer span.End()

	res := gw.Adapter.SubmitPayment(ctx, req)
	o.finishAttempt(ctx, span, gw, opPayment, res.OK, res.Reason)
	return res
}

func (o *PaymentOrchestrator) submitRefund(ctx context.Context, gw ActiveGateway, externalID string) gateway.RefundResult {
	ctx, span := o.startAttempt(ctx, gw, opRefund)
	defer span.End()

	res := gw.Adapter.SubmitRefund(ctx, externalID)
	o.finishAttempt(ctx, span, gw, opRefund, res.OK, res.Reason)
	return res
}

func (o *PaymentOrchestrator) startAttempt(ctx context.Context, gw ActiveGateway, op string) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, fmt.Sprintf("gateway.%s", op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gateway.name", gw.Name),
			attribute.Int64("gateway.id", gw.ID),
			attribute.Int("gateway.priority", gw.Priority),
		),
	)
}

func (o *PaymentOrchestrator) finishAttempt(ctx context.Context, span trace.Span, gw ActiveGateway, op string, ok bool, reason string) {
	outcome := "success"
	if !ok {
		outcome = "failure"
		span.SetStatus(codes.Error, reason)
	}
	if o.attempts != nil {
		o.attempts.Add(ctx, 1, metric.WithAttributes(
			attribute.String("gateway", gw.Name),
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))
	}
}
