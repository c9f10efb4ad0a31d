package config

import (
	"fmt"
	"net/url"
	"time"
)

const defaultWriteRetryInterval = 200 * time.Millisecond

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"db-name"`
	Address  string `mapstructure:"address"`
	// WriteRetryAttempts bounds the retries of a failed state write before
	// the transaction is rolled back.
	WriteRetryAttempts uint          `mapstructure:"write-retry-attempts"`
	WriteRetryInterval time.Duration `mapstructure:"write-retry-interval"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Username == "" {
		return fmt.Errorf("missing db username")
	}

	if cfg.Password == "" {
		return fmt.Errorf("missing db password")
	}

	if cfg.Address == "" {
		return fmt.Errorf("missing db address")
	}

	if cfg.DbName == "" {
		return fmt.Errorf("missing db name")
	}

	u, err := url.Parse(cfg.Address)
	if err != nil {
		return fmt.Errorf("invalid db address: %w", err)
	}

	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return fmt.Errorf("unsupported db address scheme: %s", u.Scheme)
	}

	if cfg.WriteRetryAttempts == 0 {
		cfg.WriteRetryAttempts = 1
	}

	if cfg.WriteRetryInterval <= 0 {
		cfg.WriteRetryInterval = defaultWriteRetryInterval
	}

	return nil
}
