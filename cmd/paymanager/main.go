package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/app"
	"github.com/shestoi/paymanager/internal/config"
	eventkafka "github.com/shestoi/paymanager/internal/event/kafka"
	"github.com/shestoi/paymanager/internal/service"
	platformlogging "github.com/shestoi/paymanager/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("paymanager: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "paymanager",
		Short:         "Payment orchestration backend with gateway fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.Version,
		// без подкоманды запускаем HTTP сервер
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down|status|reset]",
			Short:     "Apply goose migrations from MIGRATIONS_DIR",
			Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"up", "down", "status", "reset"},
			RunE: func(cmd *cobra.Command, args []string) error {
				command := "up"
				if len(args) == 1 {
					command = args[0]
				}
				return withLogger(func(cfg config.Config, logger *zap.Logger) error {
					return app.Migrate(cmd.Context(), cfg, command, logger)
				})
			},
		},
		&cobra.Command{
			Use:   "seed-admin",
			Short: "Create the ADMIN_EMAIL user if it does not exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withLogger(func(cfg config.Config, logger *zap.Logger) error {
					if cfg.AdminEmail == "" {
						return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required")
					}
					a, err := app.Build(cmd.Context(), cfg, logger)
					if err != nil {
						return err
					}
					defer a.Shutdown()
					return a.SeedAdmin(cmd.Context(), cfg.AdminEmail, cfg.AdminPassword)
				})
			},
		},
		newEventsCmd(),
	)
	return root
}

// newEventsCmd paymanager events tail: читает события покупок из Kafka и пишет их в лог
func newEventsCmd() *cobra.Command {
	events := &cobra.Command{
		Use:   "events",
		Short: "Purchase events published through the outbox",
	}
	events.AddCommand(&cobra.Command{
		Use:   "tail",
		Short: "Consume purchase events from PURCHASE_EVENTS_TOPIC and log them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLogger(func(cfg config.Config, logger *zap.Logger) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				reader := eventkafka.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.Topic)
				consumer := eventkafka.NewPurchaseEventConsumer(logger, reader, func(_ context.Context, e service.PurchaseEvent) error {
					logger.Info("purchase event",
						zap.String("event_id", e.EventID),
						zap.String("event_type", e.EventType),
						zap.Int64("transaction_id", e.TransactionID),
						zap.Int64("gateway_id", e.GatewayID),
						zap.Int64("amount", e.Amount),
						zap.String("status", e.Status),
					)
					return nil
				})
				defer consumer.Close()

				logger.Info("Tailing purchase events",
					zap.Strings("brokers", cfg.Kafka.Brokers),
					zap.String("topic", cfg.Kafka.Topic),
					zap.String("group_id", cfg.Kafka.ConsumerGroup),
				)
				return consumer.Start(ctx)
			})
		},
	})
	return events
}

func serve(ctx context.Context) error {
	return withLogger(func(cfg config.Config, logger *zap.Logger) error {
		// Build собирает граф зависимостей, Run блокируется до graceful shutdown
		a, err := app.Build(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to build app: %w", err)
		}
		return a.Run(ctx)
	})
}

// withLogger загружает конфигурацию и logger для команды
func withLogger(fn func(cfg config.Config, logger *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer platformlogging.Sync(logger)

	cfg.Log(logger)
	if err := fn(cfg, logger); err != nil {
		logger.Error("command failed", zap.Error(err))
		return err
	}
	return nil
}
