package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib" // драйвер pgx для goose

	"github.com/shestoi/paymanager/internal/config"
)

// Migrate выполняет goose команду (up, down, status, ...) над PAYMANAGER_POSTGRES_DSN
func Migrate(ctx context.Context, cfg config.Config, command string, logger *zap.Logger) error {
	if cfg.StorageDriver != config.StoragePostgres {
		return fmt.Errorf("migrations require STORAGE_DRIVER=postgres, got %s", cfg.StorageDriver)
	}
	return migrate(ctx, cfg.PostgresDSN, cfg.MigrationsDir, command, logger)
}

func migrate(ctx context.Context, dsn, dir, command string, logger *zap.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migrations db: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	logger.Info("Running migrations", zap.String("command", command), zap.String("dir", dir))
	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
