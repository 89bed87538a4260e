package cmd

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/naveedm/natours/backend/mail"
	"github.com/naveedm/natours/backend/store"
)

// Config stores app configuration, every value is environment-supplied
type Config struct {
	Env       string  `env:"APP_ENV" envDefault:"development"`
	Port      int     `env:"PORT,required"`
	Timeout   int     `env:"CONTEXT_TIMEOUT" envDefault:"10"`
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"20"`
	BodyLimit string  `env:"BODY_LIMIT" envDefault:"100K"`
	// OtlpAddress is the collector traces and metrics are exported to
	OtlpAddress string `env:"OTLP_ADDRESS" envDefault:"localhost:4317"`
	JWT         JWTConfig
	Mongo       store.MongoConfig
	SMTP        mail.SMTPConfig
}

// JWTConfig stores token issuance configuration
type JWTConfig struct {
	Secret string `env:"JWT_SECRET,required"`
	// ExpiresIn is the token lifetime, e.g. "24h"
	ExpiresIn time.Duration `env:"JWT_EXPIRES_IN,required"`
	// CookieExpiresIn is the mirrored cookie lifetime in days
	CookieExpiresIn int `env:"JWT_COOKIE_EXPIRES_IN,required"`
}

// Production reports whether the app runs in production mode
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Address returns the listen address
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// CookieExpiry returns the cookie lifetime as a duration
func (c *Config) CookieExpiry() time.Duration {
	return time.Duration(c.JWT.CookieExpiresIn) * 24 * time.Hour
}

// AppConfig reads configuration from the environment and fails fast on any
// missing required variable. A local .env file is honored when present.
func AppConfig(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded configuration from .env file")
	}

	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("can't parse environment configuration: %w", err)
	}

	return cfg, nil
}
