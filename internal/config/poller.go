package config

import (
	"errors"
	"time"
)

const defaultOutboxBatchSize = 500

type PollerConfig struct {
	InvariantCheckInterval time.Duration `mapstructure:"invariant-check-interval"`
	OutboxPollingInterval  time.Duration `mapstructure:"outbox-polling-interval"`
	OutboxBatchSize        int64         `mapstructure:"outbox-batch-size"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.InvariantCheckInterval <= 0 {
		return errors.New("invariant-check-interval must be positive")
	}

	if cfg.OutboxPollingInterval <= 0 {
		return errors.New("outbox-polling-interval must be positive")
	}

	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = defaultOutboxBatchSize
	}

	return nil
}
