package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Gateway1Name имя шлюза в таблице gateways
const Gateway1Name = "Gateway1"

// Gateway1Config адрес и учётные данные Gateway1
type Gateway1Config struct {
	BaseURL string
	Email   string
	Token   string
}

// Gateway1 шлюз с bearer авторизацией через POST /login
type Gateway1 struct {
	cfg    Gateway1Config
	client *http.Client
	logger *zap.Logger
}

func NewGateway1(cfg Gateway1Config, client *http.Client, logger *zap.Logger) *Gateway1 {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Gateway1{cfg: cfg, client: client, logger: logger}
}

func (g *Gateway1) Name() string { return Gateway1Name }

type gateway1Login struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type gateway1LoginResponse struct {
	Token string `json:"token"`
}

type gateway1Transaction struct {
	Amount     int64  `json:"amount"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	CardNumber string `json:"cardNumber"`
	CVV        string `json:"cvv"`
}

type gateway1TransactionResponse struct {
	ID externalID `json:"id"`
}

func (g *Gateway1) login(ctx context.Context) (map[string]string, error) {
	var resp gateway1LoginResponse
	err := postJSON(ctx, g.client, Gateway1Name, g.cfg.BaseURL+"/login", nil,
		gateway1Login{Email: g.cfg.Email, Token: g.cfg.Token}, &resp)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + resp.Token}, nil
}

func (g *Gateway1) SubmitPayment(ctx context.Context, req PaymentRequest) PaymentResult {
	headers, err := g.login(ctx)
	if err != nil {
		g.logger.Warn("gateway1 login failed", zap.Error(err))
		return PaymentResult{Reason: err.Error()}
	}

	var resp gateway1TransactionResponse
	err = postJSON(ctx, g.client, Gateway1Name, g.cfg.BaseURL+"/transactions", headers, gateway1Transaction{
		Amount:     req.Amount,
		Name:       req.Name,
		Email:      req.Email,
		CardNumber: req.CardNumber,
		CVV:        req.CVV,
	}, &resp)
	if err != nil {
		return PaymentResult{Reason: err.Error()}
	}
	if resp.ID == "" {
		return PaymentResult{Reason: Gateway1Name + " returned empty id"}
	}
	return PaymentResult{OK: true, ExternalID: string(resp.ID)}
}

func (g *Gateway1) SubmitRefund(ctx context.Context, externalID string) RefundResult {
	headers, err := g.login(ctx)
	if err != nil {
		g.logger.Warn("gateway1 login failed", zap.Error(err))
		return RefundResult{Reason: err.Error()}
	}

	endpoint := g.cfg.BaseURL + "/transactions/" + url.PathEscape(externalID) + "/charge_back"
	if err := postJSON(ctx, g.client, Gateway1Name, endpoint, headers, nil, nil); err != nil {
		return RefundResult{Reason: err.Error()}
	}
	return RefundResult{OK: true}
}
