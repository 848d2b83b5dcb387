package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/playbook-backend/internal/clients/redis"
	"github.com/yungbote/playbook-backend/internal/data/db"
	httpMW "github.com/yungbote/playbook-backend/internal/http/middleware"
	"github.com/yungbote/playbook-backend/internal/observability"
	"github.com/yungbote/playbook-backend/internal/platform/config"
	"github.com/yungbote/playbook-backend/internal/services"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	LogMode string `env:"LOG_MODE" envDefault:"development"`

	RequestTimeout    time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"15s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"20s"`
	AllowedOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	DB          db.Config
	Redis       redis.Config
	Composition services.CompositionConfig
	Security    httpMW.SecurityHeadersConfig
	Metrics     observability.MetricsConfig
	Otel        observability.OtelConfig
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case db.DriverPostgres, db.DriverMySQL, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.Composition.BatchConcurrency < 0 {
		return fmt.Errorf("COMPOSITION_BATCH_CONCURRENCY must be >= 0")
	}
	return nil
}

func (c Config) Addr() string {
	port := strings.TrimSpace(c.Port)
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
