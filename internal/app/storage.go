package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/config"
	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/repository/memory"
	"github.com/shestoi/paymanager/internal/repository/postgres"
	redisrepo "github.com/shestoi/paymanager/internal/repository/redis"
	platformhealth "github.com/shestoi/paymanager/platform/health/http"
	platformshutdown "github.com/shestoi/paymanager/platform/shutdown"
)

// transactionStore транзакции вместе с outbox, который читает dispatcher
type transactionStore interface {
	repository.TransactionRepository
	repository.OutboxRepository
}

// storage репозитории выбранного драйвера и проверки для /health
type storage struct {
	products     repository.ProductRepository
	clients      repository.ClientRepository
	gateways     repository.GatewayRepository
	transactions transactionStore
	users        repository.UserRepository
	sessions     repository.SessionRepository
	checks       []platformhealth.Check
}

// openStorage поднимает хранилище и регистрирует закрытие соединений в shutdown manager
func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger, shutdownMgr *platformshutdown.Manager) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			products:     memory.NewProductRepository(),
			clients:      memory.NewClientRepository(),
			gateways:     memory.NewGatewayRepository(memory.DefaultGateways()...),
			transactions: memory.NewTransactionRepository(),
			users:        memory.NewUserRepository(),
			sessions:     memory.NewSessionRepository(),
		}, nil
	}

	// Подключаемся к PostgreSQL
	logger.Info("Connecting to PostgreSQL")
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	logger.Info("PostgreSQL connection established")

	if cfg.AutoMigrate {
		if err := migrate(ctx, cfg.PostgresDSN, cfg.MigrationsDir, "up", logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	// Подключаемся к Redis
	logger.Info("Connecting to Redis", zap.String("addr", cfg.RedisAddr))
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("Redis connection established")

	shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))
	shutdownMgr.Add("redis_client", platformshutdown.CloseCloser(redisClient))

	return &storage{
		products:     postgres.NewProductRepository(pool),
		clients:      postgres.NewClientRepository(pool),
		gateways:     postgres.NewGatewayRepository(pool),
		transactions: postgres.NewTransactionRepository(pool),
		users:        postgres.NewUserRepository(pool),
		sessions:     redisrepo.NewSessionRepository(redisClient, logger),
		checks: []platformhealth.Check{
			{Name: "postgres", Fn: pool.Ping},
			{Name: "redis", Fn: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		},
	}, nil
}
