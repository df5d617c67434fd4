package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
		MaxBodyBytes    int64         `env:"HTTP_MAX_BODY_BYTES" envDefault:"4194304"`
	}
	GRPC struct {
		Port int `env:"GRPC_PORT" envDefault:"9090"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Store struct {
		Backend   string `env:"STORE_BACKEND" envDefault:"memory"`
		KeyPrefix string `env:"STORE_KEY_PREFIX" envDefault:"tundr:problem:"`
	}
	Redis struct {
		Addrs    []string `env:"REDIS_ADDRS" envSeparator:"," envDefault:"localhost:6379"`
		Username string   `env:"REDIS_USERNAME"`
		Password string   `env:"REDIS_PASSWORD"`
		DB       int      `env:"REDIS_DB" envDefault:"0"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be served.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPC.Port)
	}
	if c.GRPC.Port != 0 && c.GRPC.Port == c.HTTP.Port {
		return fmt.Errorf("GRPC_PORT and HTTP_PORT must differ")
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		addrs := c.Redis.Addrs[:0:0]
		for _, a := range c.Redis.Addrs {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
		if len(addrs) == 0 {
			return fmt.Errorf("REDIS_ADDRS is required when STORE_BACKEND=redis")
		}
		c.Redis.Addrs = addrs
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %q or %q)", c.Store.Backend, StoreMemory, StoreRedis)
	}
	return nil
}
