package kafka

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// LoadEnv заполняет cfg из окружения поверх уже выставленных значений.
// environ позволяет передать заранее собранное окружение (nil -> os.Environ).
func LoadEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("kafka config: %w", err)
	}
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka config: KAFKA_BROKERS is empty")
	}
	if cfg.OutboxBatchSize <= 0 || cfg.OutboxMaxRetries <= 0 {
		return fmt.Errorf("kafka config: OUTBOX_BATCH_SIZE and OUTBOX_MAX_RETRIES must be positive")
	}
	return nil
}
