package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Orders   OrdersConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"5000"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	CORSOrigin      string        `envconfig:"CORS_ORIGIN" default:"http://localhost:3000"`
}

type DatabaseConfig struct {
	URL      string `envconfig:"DATABASE_URL" required:"true"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"0"`
	Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	Seed     bool   `envconfig:"DB_SEED" default:"false"`
}

type OrdersConfig struct {
	Currency       string          `envconfig:"STORE_CURRENCY" default:"USD"`
	TotalTolerance decimal.Decimal `envconfig:"TOTAL_TOLERANCE" default:"0"`
}

// RedisConfig enables the order read cache when Addr is set.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_TTL" default:"5m"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// KafkaConfig enables order.created events when Brokers is set.
type KafkaConfig struct {
	Brokers      []string      `envconfig:"KAFKA_BROKERS"`
	OrdersTopic  string        `envconfig:"KAFKA_ORDERS_TOPIC" default:"orders"`
	PollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"1s"`
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// AuthConfig enables bearer token verification when Secret is set.
type AuthConfig struct {
	Secret string `envconfig:"JWT_SECRET"`
}

func (a AuthConfig) Enabled() bool {
	return a.Secret != ""
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("envconfig.Process: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cfg.Validate: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if _, err := domain.ParseCurrency(c.Orders.Currency); err != nil {
		return err
	}

	if c.Orders.TotalTolerance.IsNegative() {
		return fmt.Errorf("TOTAL_TOLERANCE must not be negative")
	}

	if c.Kafka.Enabled() && c.Kafka.BatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL[%s] is not valid", c.LogLevel)
	}

	return nil
}

func (c *Config) Currency() domain.Currency {
	return domain.MustParseCurrency(c.Orders.Currency)
}
