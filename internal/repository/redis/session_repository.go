package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/repository"
)

const (
	keyPrefix           = "paymanager:session:"
	hashFieldUserID     = "user_id"
	hashFieldCreatedAt  = "created_at"
	hashFieldLastSeenAt = "last_seen_at"
)

// SessionRepository сессии в Redis hash с TTL на ключе
type SessionRepository struct {
	client redis.UniversalClient
	logger *zap.Logger
}

func NewSessionRepository(client redis.UniversalClient, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		client: client,
		logger: logger,
	}
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *SessionRepository) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (repository.Session, error) {
	sessionID := uuid.NewString()
	key := sessionKey(sessionID)
	now := time.Now().UTC()
	stamp := now.Format(time.RFC3339)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, hashFieldUserID, userID, hashFieldCreatedAt, stamp, hashFieldLastSeenAt, stamp)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("failed to create session in redis",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return repository.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Debug("session created",
		zap.Int64("user_id", userID),
		zap.Duration("ttl", ttl),
	)

	return repository.Session{ID: sessionID, UserID: userID, ExpiresAt: now.Add(ttl)}, nil
}

func (r *SessionRepository) GetUserIDBySession(ctx context.Context, sessionID string) (int64, error) {
	raw, err := r.client.HGet(ctx, sessionKey(sessionID), hashFieldUserID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, repository.ErrSessionNotFound
		}
		r.logger.Error("failed to get session from redis", zap.Error(err))
		return 0, fmt.Errorf("failed to get session: %w", err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		r.logger.Warn("session hash has invalid user_id", zap.String("user_id", raw))
		return 0, repository.ErrSessionNotFound
	}
	return userID, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		r.logger.Error("failed to delete session from redis", zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RefreshSession продлевает TTL. HSET на отсутствующем ключе создал бы пустую сессию, поэтому сначала проверяем наличие
func (r *SessionRepository) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	key := sessionKey(sessionID)

	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("failed to check session in redis", zap.Error(err))
		return fmt.Errorf("failed to check session: %w", err)
	}
	if n == 0 {
		return repository.ErrSessionNotFound
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, hashFieldLastSeenAt, time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, key, ttl)
	if _, err = pipe.Exec(ctx); err != nil {
		r.logger.Error("failed to refresh session in redis", zap.Error(err))
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	return nil
}
