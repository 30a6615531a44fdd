package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/authctx"
	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/service"
)

type stubAuth map[string]repository.User

func (s stubAuth) Authenticate(ctx context.Context, sid string) (repository.User, error) {
	if sid == "broken" {
		return repository.User{}, errors.New("redis down")
	}
	u, ok := s[sid]
	if !ok {
		return repository.User{}, service.ErrSessionNotFoundOrExpired
	}
	return u, nil
}

func TestRequireSession(t *testing.T) {
	auth := stubAuth{"good": {ID: 9, Role: repository.RoleFinance}}
	var seen authctx.Principal
	h := RequireSession(auth, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = authctx.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "bearer", header: map[string]string{"Authorization": "Bearer good"}, want: http.StatusNoContent},
		{name: "x-session-id", header: map[string]string{SessionHeader: "good"}, want: http.StatusNoContent},
		{name: "expired", header: map[string]string{"Authorization": "Bearer old"}, want: http.StatusUnauthorized},
		{name: "store failure", header: map[string]string{SessionHeader: "broken"}, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, int64(9), seen.UserID)
	assert.Equal(t, "good", seen.SessionID)
}

func TestRequireRoles(t *testing.T) {
	h := RequireRoles(repository.RoleAdmin, repository.RoleFinance)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for role, want := range map[repository.Role]int{
		repository.RoleFinance: http.StatusOK,
		repository.RoleAdmin:   http.StatusOK,
		repository.RoleManager: http.StatusForbidden,
		repository.RoleUser:    http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(authctx.WithPrincipal(req.Context(), authctx.Principal{UserID: 1, Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, string(role))
	}
}
