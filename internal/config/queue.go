package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultPublishTimeout = 5 * time.Second
	defaultExchangeName   = "farming.events"
)

type QueueConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// Url is the broker host and port without scheme and credentials.
	Url              string        `mapstructure:"url"`
	Exchange         string        `mapstructure:"exchange"`
	PublishTimeout   time.Duration `mapstructure:"publish-timeout"`
	MaxRetryAttempts uint          `mapstructure:"max-retry-attempts"`
	RetryInterval    time.Duration `mapstructure:"retry-interval"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.User == "" {
		return errors.New("missing queue user")
	}

	if cfg.Password == "" {
		return errors.New("missing queue password")
	}

	if cfg.Url == "" {
		return errors.New("missing queue url")
	}

	if cfg.MaxRetryAttempts == 0 {
		return errors.New("queue max-retry-attempts must be positive")
	}

	if cfg.RetryInterval <= 0 {
		return errors.New("queue retry-interval must be positive")
	}

	if cfg.Exchange == "" {
		cfg.Exchange = defaultExchangeName
	}

	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}

	return nil
}

// AmqpURI is the dial address of the broker.
func (cfg *QueueConfig) AmqpURI() string {
	return fmt.Sprintf("amqp://%s:%s@%s", cfg.User, cfg.Password, cfg.Url)
}
