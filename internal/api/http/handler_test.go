package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/client/gateway"
	gwmocks "github.com/shestoi/paymanager/internal/client/gateway/mocks"
	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/repository/memory"
	"github.com/shestoi/paymanager/internal/service"
	platformhealth "github.com/shestoi/paymanager/platform/health/http"
)

type apiFixture struct {
	router http.Handler
	g1     *gwmocks.Adapter
	g2     *gwmocks.Adapter
	admin  string
	mgr    string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	products := memory.NewProductRepository(repository.Product{ID: 1, Name: "Keyboard", Amount: 1500})
	clients := memory.NewClientRepository()
	gateways := memory.NewGatewayRepository(memory.DefaultGateways()...)
	txns := memory.NewTransactionRepository()
	users := service.NewUserService(logger, memory.NewUserRepository(), memory.NewSessionRepository(), time.Hour)

	f := &apiFixture{g1: gwmocks.NewAdapter(t), g2: gwmocks.NewAdapter(t)}
	f.g1.On("Name").Return(gateway.Gateway1Name)
	f.g2.On("Name").Return(gateway.Gateway2Name)

	payments := service.NewPaymentOrchestrator(logger, service.NewGatewayRegistry(logger, gateways, f.g1, f.g2))
	handler := NewHandler(logger,
		service.NewPurchaseService(logger, payments, products, clients, gateways, txns, nil),
		service.NewProductService(logger, products),
		service.NewGatewayService(logger, gateways),
		service.NewClientService(clients, txns),
		users,
		service.DefaultPurchaseRules(),
	)
	f.router = NewRouter(handler, users, platformhealth.Handler(time.Second), logger)

	_, err := users.EnsureAdmin(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	role := repository.RoleManager
	email, password := "mgr@example.com", "manager1"
	_, err = users.Create(ctx, service.UserInput{Email: &email, Password: &password, Role: &role})
	require.NoError(t, err)

	f.admin = f.login(t, "admin@example.com", "admin123")
	f.mgr = f.login(t, email, password)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func (f *apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()
	rec, body := f.do(t, http.MethodPost, "/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bearer", body["type"])
	return body["value"].(string)
}

func purchaseBody(productID int64) map[string]any {
	return map[string]any{
		"items": []map[string]any{{"productId": productID, "quantity": 2}},
		"payment": map[string]any{
			"name":       "Ana",
			"email":      "a@x.com",
			"cardNumber": "5569000000006063",
			"cvv":        "010",
		},
	}
}

func TestPurchases(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("requires session", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/purchases", "", purchaseBody(1))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid payload is 422", func(t *testing.T) {
		body := purchaseBody(1)
		body["payment"].(map[string]any)["cvv"] = "1"
		rec, out := f.do(t, http.MethodPost, "/purchases", f.mgr, body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.NotEmpty(t, out["errors"])
	})

	t.Run("missing product is 404 with ids", func(t *testing.T) {
		rec, out := f.do(t, http.MethodPost, "/purchases", f.mgr, purchaseBody(99))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, []any{float64(99)}, out["missingProductIds"])
	})

	t.Run("payment failure is 400", func(t *testing.T) {
		f.g1.On("SubmitPayment", mock.Anything, mock.Anything).Return(gateway.PaymentResult{Reason: "invalid card"}).Once()
		f.g2.On("SubmitPayment", mock.Anything, mock.Anything).Return(gateway.PaymentResult{Reason: "declined"}).Once()

		rec, out := f.do(t, http.MethodPost, "/purchases", f.mgr, purchaseBody(1))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, service.MsgAllGatewaysFailed, out["error"])
		assert.Len(t, out["attempts"], 2)
	})

	var txnID float64
	t.Run("successful purchase", func(t *testing.T) {
		f.g1.On("SubmitPayment", mock.Anything, mock.Anything).Return(gateway.PaymentResult{OK: true, ExternalID: "ext-1"}).Once()

		rec, out := f.do(t, http.MethodPost, "/purchases", f.mgr, purchaseBody(1))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, float64(3000), out["amount"])
		assert.Equal(t, "paid", out["status"])
		assert.Equal(t, "6063", out["cardLastNumbers"])
		assert.Equal(t, float64(1), out["gatewayId"])
		assert.Len(t, out["items"], 1)
		txnID = out["transactionId"].(float64)
	})

	path := "/purchases/" + jsonNumber(txnID)

	t.Run("show includes client and gateway", func(t *testing.T) {
		rec, out := f.do(t, http.MethodGet, path, f.mgr, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		purchase := out["purchase"].(map[string]any)
		assert.Equal(t, "a@x.com", purchase["client"].(map[string]any)["email"])
		assert.Equal(t, "Gateway1", purchase["gateway"].(map[string]any)["name"])
	})

	t.Run("refund requires finance or admin", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, path+"/refund", f.mgr, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("refund then conflict", func(t *testing.T) {
		f.g1.On("SubmitRefund", mock.Anything, "ext-1").Return(gateway.RefundResult{OK: true}).Once()

		rec, out := f.do(t, http.MethodPost, path+"/refund", f.admin, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, true, out["success"])

		rec, _ = f.do(t, http.MethodPost, path+"/refund", f.admin, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("refund of unknown transaction", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/purchases/999/refund", f.admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodGet, "/purchases/abc", f.mgr, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGatewaysAndProducts(t *testing.T) {
	f := newAPIFixture(t)

	rec, _ := f.do(t, http.MethodPut, "/gateways/1", f.mgr, map[string]any{"isActive": false, "priority": 3})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, out := f.do(t, http.MethodPut, "/gateways/1", f.admin, map[string]any{"isActive": false, "priority": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["isActive"])

	rec, _ = f.do(t, http.MethodPut, "/gateways/1", f.admin, map[string]any{"isActive": true, "priority": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/products", f.mgr, map[string]any{"name": "Mouse", "amount": 800})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, out = f.do(t, http.MethodGet, "/products?limit=1&page=2", f.mgr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta := out["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["total"])
	data := out["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Mouse", data[0].(map[string]any)["name"])

	rec, _ = f.do(t, http.MethodGet, "/products?amount=abc", f.mgr, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/products/42", f.mgr, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthAndUsers(t *testing.T) {
	f := newAPIFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/login", "", map[string]string{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/users", f.mgr, map[string]string{"email": "x@example.com", "password": "secret1", "role": "USER"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, out := f.do(t, http.MethodPost, "/users", f.admin, map[string]string{"email": "x@example.com", "password": "secret1", "role": "USER"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, out, "password")
	assert.NotContains(t, out, "passwordHash")

	rec, _ = f.do(t, http.MethodPost, "/users", f.admin, map[string]string{"email": "x@example.com", "password": "secret1", "role": "USER"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/logout", f.mgr, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/users", f.mgr, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefundFailureCarriesSuccessFlag(t *testing.T) {
	f := newAPIFixture(t)
	f.g1.On("SubmitPayment", mock.Anything, mock.Anything).Return(gateway.PaymentResult{OK: true, ExternalID: "ext-5"}).Once()

	rec, out := f.do(t, http.MethodPost, "/purchases", f.mgr, purchaseBody(1))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	path := "/purchases/" + jsonNumber(out["transactionId"].(float64)) + "/refund"

	f.g1.On("SubmitRefund", mock.Anything, "ext-5").Return(gateway.RefundResult{Reason: "not found"}).Once()
	f.g2.On("SubmitRefund", mock.Anything, "ext-5").Return(gateway.RefundResult{Reason: "not found"}).Once()

	rec, out = f.do(t, http.MethodPost, path, f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "refund failed", out["message"])
	assert.Len(t, out["attempts"], 2)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	f := newAPIFixture(t)

	body := map[string]any{"name": strings.Repeat("x", maxRequestBody+1), "amount": 100}
	rec, _ := f.do(t, http.MethodPost, "/products", f.mgr, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/products", f.mgr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func jsonNumber(f float64) string {
	raw, _ := json.Marshal(int64(f))
	return string(raw)
}
