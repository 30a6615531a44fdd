package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testPayment = PaymentRequest{
	Amount:     3000,
	Name:       "Ana",
	Email:      "a@x.com",
	CardNumber: "5569000000006063",
	CVV:        "010",
}

func TestGateway1_SubmitPayment(t *testing.T) {
	t.Run("login then transaction with bearer token", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "dev@betalent.tech", body["email"])
			assert.Equal(t, "secret-token", body["token"])
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "jwt-1"})
		})
		mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(3000), body["amount"])
			assert.Equal(t, "5569000000006063", body["cardNumber"])
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "ext-123"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		gw := NewGateway1(Gateway1Config{BaseURL: srv.URL + "/", Email: "dev@betalent.tech", Token: "secret-token"},
			NewHTTPClient(time.Second), zap.NewNop())

		res := gw.SubmitPayment(context.Background(), testPayment)
		require.True(t, res.OK, res.Reason)
		assert.Equal(t, "ext-123", res.ExternalID)
	})

	t.Run("provider message becomes reason", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "jwt-1"})
		})
		mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid card"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		gw := NewGateway1(Gateway1Config{BaseURL: srv.URL}, NewHTTPClient(time.Second), zap.NewNop())

		res := gw.SubmitPayment(context.Background(), testPayment)
		assert.False(t, res.OK)
		assert.Equal(t, "invalid card", res.Reason)
		assert.Empty(t, res.ExternalID)
	})

	t.Run("login failure without body uses status reason", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		gw := NewGateway1(Gateway1Config{BaseURL: srv.URL}, NewHTTPClient(time.Second), zap.NewNop())

		res := gw.SubmitPayment(context.Background(), testPayment)
		assert.False(t, res.OK)
		assert.Equal(t, "Gateway1 status 401", res.Reason)
	})

	t.Run("timeout maps to failed result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		gw := NewGateway1(Gateway1Config{BaseURL: srv.URL}, NewHTTPClient(20*time.Millisecond), zap.NewNop())

		res := gw.SubmitPayment(context.Background(), testPayment)
		assert.False(t, res.OK)
		assert.NotEmpty(t, res.Reason)
	})

	t.Run("numeric id is accepted", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token":"t"}`))
		})
		mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":42}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		gw := NewGateway1(Gateway1Config{BaseURL: srv.URL}, NewHTTPClient(time.Second), zap.NewNop())

		res := gw.SubmitPayment(context.Background(), testPayment)
		require.True(t, res.OK)
		assert.Equal(t, "42", res.ExternalID)
	})
}

func TestGateway1_SubmitRefund(t *testing.T) {
	var chargedBack string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"jwt-1"}`))
	})
	mux.HandleFunc("/transactions/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))
		chargedBack = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gw := NewGateway1(Gateway1Config{BaseURL: srv.URL}, NewHTTPClient(time.Second), zap.NewNop())

	res := gw.SubmitRefund(context.Background(), "ext-123")
	require.True(t, res.OK, res.Reason)
	assert.Equal(t, "/transactions/ext-123/charge_back", chargedBack)
}

func TestGateway2_SubmitPayment(t *testing.T) {
	t.Run("auth headers and portuguese payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transacoes", r.URL.Path)
			assert.Equal(t, "tk", r.Header.Get("Gateway-Auth-Token"))
			assert.Equal(t, "sec", r.Header.Get("Gateway-Auth-Secret"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(3000), body["valor"])
			assert.Equal(t, "Ana", body["nome"])
			assert.Equal(t, "5569000000006063", body["numeroCartao"])

			_, _ = w.Write([]byte(`{"id":"g2-1"}`))
		}))
		defer srv.Close()

		gw := NewGateway2(Gateway2Config{BaseURL: srv.URL, AuthToken: "tk", AuthSecret: "sec"},
			NewHTTPClient(time.Second), zap.NewNop())

		res := gw.SubmitPayment(context.Background(), testPayment)
		require.True(t, res.OK, res.Reason)
		assert.Equal(t, "g2-1", res.ExternalID)
	})

	t.Run("error field becomes reason", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"cvv inválido"}`))
		}))
		defer srv.Close()

		gw := NewGateway2(Gateway2Config{BaseURL: srv.URL}, NewHTTPClient(time.Second), zap.NewNop())

		res := gw.SubmitPayment(context.Background(), testPayment)
		assert.False(t, res.OK)
		assert.Equal(t, "cvv inválido", res.Reason)
	})

	t.Run("unreachable provider", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		gw := NewGateway2(Gateway2Config{BaseURL: addr}, NewHTTPClient(time.Second), zap.NewNop())

		res := gw.SubmitPayment(context.Background(), testPayment)
		assert.False(t, res.OK)
		assert.NotEmpty(t, res.Reason)
	})
}

func TestGateway2_SubmitRefund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transacoes/reembolso", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["id"] != "g2-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	gw := NewGateway2(Gateway2Config{BaseURL: srv.URL}, NewHTTPClient(time.Second), zap.NewNop())

	res := gw.SubmitRefund(context.Background(), "g2-1")
	assert.True(t, res.OK, res.Reason)

	res = gw.SubmitRefund(context.Background(), "unknown")
	assert.False(t, res.OK)
	assert.Equal(t, "Gateway2 status 404", res.Reason)
}
