package gateway

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Gateway2Name имя шлюза в таблице gateways
const Gateway2Name = "Gateway2"

// Gateway2Config адрес и статические заголовки авторизации Gateway2
type Gateway2Config struct {
	BaseURL    string
	AuthToken  string
	AuthSecret string
}

// Gateway2 шлюз с авторизацией заголовками Gateway-Auth-Token / Gateway-Auth-Secret
type Gateway2 struct {
	cfg    Gateway2Config
	client *http.Client
	logger *zap.Logger
}

func NewGateway2(cfg Gateway2Config, client *http.Client, logger *zap.Logger) *Gateway2 {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Gateway2{cfg: cfg, client: client, logger: logger}
}

func (g *Gateway2) Name() string { return Gateway2Name }

type gateway2Transaction struct {
	Valor        int64  `json:"valor"`
	Nome         string `json:"nome"`
	Email        string `json:"email"`
	NumeroCartao string `json:"numeroCartao"`
	CVV          string `json:"cvv"`
}

type gateway2TransactionResponse struct {
	ID externalID `json:"id"`
}

type gateway2Refund struct {
	ID string `json:"id"`
}

func (g *Gateway2) headers() map[string]string {
	return map[string]string{
		"Gateway-Auth-Token":  g.cfg.AuthToken,
		"Gateway-Auth-Secret": g.cfg.AuthSecret,
	}
}

func (g *Gateway2) SubmitPayment(ctx context.Context, req PaymentRequest) PaymentResult {
	var resp gateway2TransactionResponse
	err := postJSON(ctx, g.client, Gateway2Name, g.cfg.BaseURL+"/transacoes", g.headers(), gateway2Transaction{
		Valor:        req.Amount,
		Nome:         req.Name,
		Email:        req.Email,
		NumeroCartao: req.CardNumber,
		CVV:          req.CVV,
	}, &resp)
	if err != nil {
		g.logger.Debug("gateway2 payment rejected", zap.Error(err))
		return PaymentResult{Reason: err.Error()}
	}
	if resp.ID == "" {
		return PaymentResult{Reason: Gateway2Name + " returned empty id"}
	}
	return PaymentResult{OK: true, ExternalID: string(resp.ID)}
}

func (g *Gateway2) SubmitRefund(ctx context.Context, externalID string) RefundResult {
	err := postJSON(ctx, g.client, Gateway2Name, g.cfg.BaseURL+"/transacoes/reembolso", g.headers(),
		gateway2Refund{ID: externalID}, nil)
	if err != nil {
		g.logger.Debug("gateway2 refund rejected", zap.Error(err))
		return RefundResult{Reason: err.Error()}
	}
	return RefundResult{OK: true}
}
