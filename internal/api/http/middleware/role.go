package middleware

import (
	"net/http"
	"slices"

	"github.com/shestoi/paymanager/internal/authctx"
	"github.com/shestoi/paymanager/internal/repository"
)

// RequireRoles пропускает только пользователей с одной из ролей; ставится после RequireSession
func RequireRoles(roles ...repository.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := authctx.PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "session token is required")
				return
			}
			if !slices.Contains(roles, p.Role) {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
