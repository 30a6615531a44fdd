package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/shestoi/paymanager/internal/api/http"
	"github.com/shestoi/paymanager/internal/client/gateway"
	"github.com/shestoi/paymanager/internal/config"
	eventkafka "github.com/shestoi/paymanager/internal/event/kafka"
	"github.com/shestoi/paymanager/internal/service"
	platformhealth "github.com/shestoi/paymanager/platform/health/http"
	platformlogging "github.com/shestoi/paymanager/platform/logging"
	"github.com/shestoi/paymanager/platform/observability"
	platformshutdown "github.com/shestoi/paymanager/platform/shutdown"
)

// Version проставляется при сборке через -ldflags
var Version = "dev"

// App содержит все зависимости для запуска и корректного shutdown paymanager
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	httpServer  *http.Server
	users       *service.UserService
	dispatcher  *eventkafka.OutboxDispatcher
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// NewLogger logger сервиса по конфигурации
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	return platformlogging.New(platformlogging.Config{
		ServiceName: httpapi.ServiceName,
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
}

// Build создаёт и настраивает все зависимости paymanager
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger.Info("Building paymanager", zap.String("http_addr", cfg.HTTPAddr), zap.String("version", Version))

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	otelShutdown, err := observability.Init(ctx, observability.Config{
		Enabled:               cfg.OTel.Enabled,
		OTLPEndpoint:          cfg.OTel.Endpoint,
		SamplingRatio:         cfg.OTel.SamplingRatio,
		ServiceName:           httpapi.ServiceName,
		DeploymentEnvironment: string(cfg.AppEnv),
		ServiceVersion:        Version,
	})
	if err != nil {
		return nil, err
	}
	shutdownMgr.Add("otel", otelShutdown)

	store, err := openStorage(ctx, cfg, logger, shutdownMgr)
	if err != nil {
		shutdownMgr.Shutdown()
		return nil, err
	}

	// Адаптеры шлюзов; имена совпадают с gateways.name
	httpClient := gateway.NewHTTPClient(cfg.Gateways.Timeout)
	adapters := []gateway.Adapter{
		gateway.NewGateway1(gateway.Gateway1Config{
			BaseURL: cfg.Gateways.Gateway1URL,
			Email:   cfg.Gateways.Gateway1Email,
			Token:   cfg.Gateways.Gateway1Token,
		}, httpClient, logger),
		gateway.NewGateway2(gateway.Gateway2Config{
			BaseURL:    cfg.Gateways.Gateway2URL,
			AuthToken:  cfg.Gateways.Gateway2AuthToken,
			AuthSecret: cfg.Gateways.Gateway2AuthSecret,
		}, httpClient, logger),
	}

	registry := service.NewGatewayRegistry(logger, store.gateways, adapters...)
	payments := service.NewPaymentOrchestrator(logger, registry)
	events := service.NewEventBuilder(cfg.EventsEnabled, cfg.Kafka.Topic)

	purchaseService := service.NewPurchaseService(logger, payments,
		store.products, store.clients, store.gateways, store.transactions, events)
	userService := service.NewUserService(logger, store.users, store.sessions, cfg.SessionTTL)

	handler := httpapi.NewHandler(logger,
		purchaseService,
		service.NewProductService(logger, store.products),
		service.NewGatewayService(logger, store.gateways),
		service.NewClientService(store.clients, store.transactions),
		userService,
		service.DefaultPurchaseRules(),
	)
	health := platformhealth.Handler(2*time.Second, store.checks...)
	router := httpapi.NewRouter(handler, userService, health, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a := &App{
		cfg:         cfg,
		logger:      logger,
		httpServer:  httpServer,
		users:       userService,
		shutdownMgr: shutdownMgr,
	}

	if cfg.EventsEnabled {
		logger.Info("Purchase events enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
		writer := eventkafka.NewKafkaWriter(cfg.Kafka.Brokers)
		a.dispatcher = eventkafka.NewOutboxDispatcher(logger, store.transactions, writer, cfg.Kafka)
		shutdownMgr.Add("kafka_writer", func(context.Context) error { return a.dispatcher.Close() })
	}

	return a, nil
}

// SeedAdmin создаёт администратора, если его ещё нет
func (a *App) SeedAdmin(ctx context.Context, email, password string) error {
	created, err := a.users.EnsureAdmin(ctx, email, password)
	if err != nil {
		return err
	}
	a.logger.Info("Admin user checked", zap.String("email", email), zap.Bool("created", created))
	return nil
}

// Shutdown освобождает ресурсы без запуска сервера (для одноразовых команд)
func (a *App) Shutdown() {
	a.shutdownMgr.Shutdown()
}

// Run запускает сервис и блокируется до сигнала shutdown или отмены ctx
func (a *App) Run(ctx context.Context) error {
	defer platformlogging.Sync(a.logger)

	if a.cfg.AdminEmail != "" {
		if err := a.SeedAdmin(ctx, a.cfg.AdminEmail, a.cfg.AdminPassword); err != nil {
			a.shutdownMgr.Shutdown()
			return err
		}
	}

	if a.dispatcher != nil {
		workerCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := a.dispatcher.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("Outbox dispatcher stopped", zap.Error(err))
			}
		}()
		a.shutdownMgr.Add("outbox_dispatcher", platformshutdown.StopWorker(cancel, done))
	}

	a.shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(a.httpServer))

	a.logger.Info("Starting paymanager", zap.String("addr", a.httpServer.Addr))
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	var serveErr error
	failed := make(chan struct{})
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			serveErr = err
			close(failed)
		}
	}()

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-failed:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait(waitCtx)

	a.wg.Wait()
	a.logger.Info("paymanager stopped")
	return serveErr
}
