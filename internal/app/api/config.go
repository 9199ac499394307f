package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	ordersrabbitmq "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/messaging/rabbitmq"
)

// StoreKind selects the order repository implementation.
type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StorePostgres StoreKind = "postgres"
	StoreRedis    StoreKind = "redis"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	Store             StoreKind
	PostgresDSN       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	AMQPURL           string
	OrdersExchange    string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	SeedFile          string
}

// LoadConfig loads an optional .env file (ENV_FILE overrides the path), reads
// environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := loadDotEnv(envDefault("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		AMQPURL:           strings.TrimSpace(os.Getenv("AMQP_URL")),
		OrdersExchange:    envDefault("ORDERS_EXCHANGE", ordersrabbitmq.DefaultExchange),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		SeedFile:          strings.TrimSpace(os.Getenv("ORDERS_SEED_FILE")),
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("REDIS_DB must be a non-negative integer")
		}
		cfg.RedisDB = db
	}
	store, err := resolveStore(strings.TrimSpace(strings.ToLower(os.Getenv("ORDERS_STORE"))), cfg)
	if err != nil {
		return Config{}, err
	}
	cfg.Store = store
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func resolveStore(raw string, cfg Config) (StoreKind, error) {
	switch StoreKind(raw) {
	case "":
		switch {
		case cfg.PostgresDSN != "":
			return StorePostgres, nil
		case cfg.RedisAddr != "":
			return StoreRedis, nil
		default:
			return StoreMemory, nil
		}
	case StoreMemory:
		return StoreMemory, nil
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return "", fmt.Errorf("ORDERS_STORE=postgres requires POSTGRES_DSN")
		}
		return StorePostgres, nil
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return "", fmt.Errorf("ORDERS_STORE=redis requires REDIS_ADDR")
		}
		return StoreRedis, nil
	default:
		return "", fmt.Errorf("ORDERS_STORE must be one of memory, postgres, redis; got %q", raw)
	}
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
