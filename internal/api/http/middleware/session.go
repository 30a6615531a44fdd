package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/authctx"
	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/service"
	"github.com/shestoi/paymanager/platform/observability"
)

// SessionHeader альтернатива Authorization: Bearer
const SessionHeader = "x-session-id"

// Authenticator проверяет сессию и возвращает её пользователя
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (repository.User, error)
}

// SessionToken достаёт токен из Authorization: Bearer <token> или x-session-id
func SessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

// RequireSession HTTP middleware: без валидной сессии 401, иначе кладёт Principal в context
func RequireSession(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := SessionToken(r)
			if sid == "" {
				writeJSONError(w, http.StatusUnauthorized, "session token is required")
				return
			}

			user, err := auth.Authenticate(r.Context(), sid)
			if err != nil {
				if errors.Is(err, service.ErrSessionNotFoundOrExpired) {
					writeJSONError(w, http.StatusUnauthorized, "session not found or expired")
					return
				}
				observability.L(r.Context(), logger).Error("failed to authenticate session", zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := authctx.WithPrincipal(r.Context(), authctx.Principal{
				UserID:    user.ID,
				Role:      user.Role,
				SessionID: sid,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
