package kafka

import "time"

// Config параметры подключения к Kafka и outbox dispatcher.
// Brokers через запятую: "kafka-1:9092,kafka-2:9092".
type Config struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	// Topic топик событий покупок (purchase.paid, purchase.refunded)
	Topic string `env:"PURCHASE_EVENTS_TOPIC" envDefault:"paymanager.purchases"`
	// ConsumerGroup группа для чтения событий (paymanager events tail)
	ConsumerGroup string `env:"KAFKA_CONSUMER_GROUP" envDefault:"paymanager-events-tail"`

	OutboxInterval   time.Duration `env:"OUTBOX_INTERVAL" envDefault:"1s"`
	OutboxBatchSize  int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	OutboxMaxRetries int           `env:"OUTBOX_MAX_RETRIES" envDefault:"3"`
	OutboxBackoff    time.Duration `env:"OUTBOX_BACKOFF" envDefault:"500ms"`
}

// DefaultConfig дефолты для запуска на хосте (kafka из docker-compose на 19092)
func DefaultConfig() Config {
	return Config{
		Brokers:          []string{"localhost:19092"},
		Topic:            "paymanager.purchases",
		ConsumerGroup:    "paymanager-events-tail",
		OutboxInterval:   time.Second,
		OutboxBatchSize:  100,
		OutboxMaxRetries: 3,
		OutboxBackoff:    500 * time.Millisecond,
	}
}
