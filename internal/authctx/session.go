package authctx

import (
	"context"

	"github.com/shestoi/paymanager/internal/repository"
)

// Principal аутентифицированный пользователь запроса
type Principal struct {
	UserID    int64
	Role      repository.Role
	SessionID string
}

type ctxKeyPrincipal struct{}

var principalKey = ctxKeyPrincipal{}

// WithPrincipal сохраняет пользователя запроса в контексте (кладёт session middleware)
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext возвращает пользователя запроса, если middleware его установил
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
