package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shestoi/paymanager/internal/repository"
)

type sessionEntry struct {
	userID    int64
	expiresAt time.Time
}

// SessionRepository сессии в памяти с TTL.
// Истёкшие записи вычищаются лениво при каждой записи
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]sessionEntry),
		now:      time.Now,
	}
}

func (r *SessionRepository) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cleanupExpiredLocked()

	s := repository.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: r.now().Add(ttl),
	}
	r.sessions[s.ID] = sessionEntry{userID: userID, expiresAt: s.ExpiresAt}
	return s, nil
}

func (r *SessionRepository) GetUserIDBySession(ctx context.Context, sessionID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[sessionID]
	if !ok || !r.now().Before(e.expiresAt) {
		return 0, repository.ErrSessionNotFound
	}
	return e.userID, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func (r *SessionRepository) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionID]
	if !ok || !r.now().Before(e.expiresAt) {
		delete(r.sessions, sessionID)
		return repository.ErrSessionNotFound
	}
	e.expiresAt = r.now().Add(ttl)
	r.sessions[sessionID] = e
	return nil
}

// cleanupExpiredLocked вызывается под r.mu
func (r *SessionRepository) cleanupExpiredLocked() {
	now := r.now()
	for id, e := range r.sessions {
		if !now.Before(e.expiresAt) {
			delete(r.sessions, id)
		}
	}
}
