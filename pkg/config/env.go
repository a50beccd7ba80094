package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Server holds process settings read from the environment.
type Server struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ConfigPath      string        `env:"DISPATCH_CONFIG" envDefault:"dispatch.yaml"`
	RedisURL        string        `env:"REDIS_URL"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	SessionSecret   string        `env:"SESSION_SECRET"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	Log             logger.Config
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvFrom is ParseEnv over an explicit variable set instead of the
// process environment.
func ParseEnvFrom(target any, vars map[string]string) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
