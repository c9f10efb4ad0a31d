package config

import (
	"fmt"
	"net"
	"time"
)

const (
	defaultServerReadTimeout  = 10 * time.Second
	defaultServerWriteTimeout = 10 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second
)

// ServerConfig is the http api listening on behalf of callers.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle-timeout"`
}

func (cfg *ServerConfig) Validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535 (inclusive)")
	}

	if net.ParseIP(cfg.Host) == nil {
		return fmt.Errorf("invalid server host: %v", cfg.Host)
	}

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultServerReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultServerWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultServerIdleTimeout
	}

	return nil
}

func (cfg *ServerConfig) Addr() string {
	return net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))
}
