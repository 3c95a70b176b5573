package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is loaded once at startup and treated as immutable afterwards.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTIssuer        string        `env:"JWT_ISSUER" envDefault:"studyhub"`
	JWTAudience      string        `env:"JWT_AUDIENCE" envDefault:"studyhub-api"`
	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	BcryptCost       int `env:"BCRYPT_COST" envDefault:"10"`
	AuthRateLimitRPM int `env:"AUTH_RATE_LIMIT_RPM" envDefault:"30"`
	APIRateLimitRPM  int `env:"API_RATE_LIMIT_RPM" envDefault:"300"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	OTELMetricsEnabled       bool          `env:"OTEL_METRICS_ENABLED" envDefault:"false"`
	OTELTracingEnabled       bool          `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	OTELExporterOTLPEndpoint string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELExporterOTLPInsecure bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELServiceName          string        `env:"OTEL_SERVICE_NAME" envDefault:"studyhub"`
	OTELMetricsInterval      time.Duration `env:"OTEL_METRICS_INTERVAL" envDefault:"30s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		err = fmt.Errorf("parse env: %w", err)
		recordConfigLoadEvent(context.Background(), cfg.Environment, "error", classifyConfigLoadError(err))
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		err = fmt.Errorf("validate config: %w", err)
		recordConfigLoadEvent(context.Background(), cfg.Environment, "error", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigLoadEvent(context.Background(), cfg.Environment, "success", "none")
	return cfg, nil
}

// Validate enforces the startup-fatal requirements. Redis is not checked
// here: outside production an unreachable Redis degrades to the in-memory
// token store instead of aborting.
func (c *Config) Validate() error {
	if len(c.JWTAccessSecret) < 32 {
		return fmt.Errorf("JWT_ACCESS_SECRET must be at least 32 bytes")
	}
	if len(c.JWTRefreshSecret) < 32 {
		return fmt.Errorf("JWT_REFRESH_SECRET must be at least 32 bytes")
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return fmt.Errorf("access and refresh secrets must differ")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }
