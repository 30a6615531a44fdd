package repository

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound сессия не найдена или истекла
var ErrSessionNotFound = errors.New("session not found")

// Session сессия пользователя панели
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=SessionRepository --dir=. --output=./mocks --outpkg=mocks

// SessionRepository хранилище сессий (Redis в проде, память локально)
type SessionRepository interface {
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (Session, error)
	// GetUserIDBySession возвращает ErrSessionNotFound для неизвестной или истёкшей сессии
	GetUserIDBySession(ctx context.Context, sessionID string) (int64, error)
	DeleteSession(ctx context.Context, sessionID string) error
	// RefreshSession продлевает TTL существующей сессии
	RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) error
}
