package config

import "time"

type Relay struct {
	BatchSize      uint32        `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	Interval       time.Duration `env:"RELAY_INTERVAL" envDefault:"1s"`
	ProduceRetries int           `env:"RELAY_PRODUCE_RETRIES" envDefault:"3"`
	RetryBackoff   time.Duration `env:"RELAY_RETRY_BACKOFF" envDefault:"100ms"`
}
