package shutdown

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Func освобождает один ресурс; ctx ограничен таймаутом менеджера
type Func func(ctx context.Context) error

type step struct {
	name string
	fn   Func
}

// Manager ждёт SIGINT/SIGTERM и закрывает ресурсы в порядке, обратном регистрации
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	steps []step
	once  sync.Once
}

// New создаёт Manager; timeout применяется к каждой функции отдельно
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Add регистрирует функцию остановки. Последняя добавленная выполняется первой
func (m *Manager) Add(name string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{name: name, fn: fn})
}

// Wait блокируется до сигнала ОС или отмены ctx, затем вызывает Shutdown
func (m *Manager) Wait(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		m.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		m.logger.Info("shutdown requested by context")
	}

	m.Shutdown()
}

// Shutdown выполняет зарегистрированные функции один раз
func (m *Manager) Shutdown() {
	m.once.Do(func() {
		m.mu.Lock()
		steps := make([]step, len(m.steps))
		copy(steps, m.steps)
		m.mu.Unlock()

		for i := len(steps) - 1; i >= 0; i-- {
			s := steps[i]

			ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
			start := time.Now()
			err := s.fn(ctx)
			cancel()

			if err != nil {
				m.logger.Error("shutdown step failed",
					zap.String("name", s.name),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err),
				)
				continue
			}
			m.logger.Info("shutdown step completed",
				zap.String("name", s.name),
				zap.Duration("duration", time.Since(start)),
			)
		}

		m.logger.Info("graceful shutdown completed")
	})
}

// ShutdownHTTPServer останавливает http.Server, дожидаясь активных запросов
func ShutdownHTTPServer(srv interface {
	Shutdown(context.Context) error
}) Func {
	return func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	}
}

// ClosePool закрывает пул соединений (pgxpool)
func ClosePool(pool interface{ Close() }) Func {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}

// CloseCloser закрывает io.Closer (redis client, kafka writer)
func CloseCloser(c io.Closer) Func {
	return func(context.Context) error {
		return c.Close()
	}
}

// StopWorker отменяет фоновую горутину и ждёт её завершения, но не дольше ctx
func StopWorker(cancel context.CancelFunc, done <-chan struct{}) Func {
	return func(ctx context.Context) error {
		cancel()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
