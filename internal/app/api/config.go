package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	forecastclient "github.com/Abka012/Odin-AI/internal/clients/http/forecast"
	invalerts "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/alerts"
)

// Store backends selectable through STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// DefaultForecastBaseURL is where the forecasting model listens in local setups.
const DefaultForecastBaseURL = "http://localhost:5000"

// DefaultInsightsCacheTTL bounds how long passthrough report rows are reused.
const DefaultInsightsCacheTTL = 30 * time.Second

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port              string
	StoreBackend      string
	PostgresDSN       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	ForecastBaseURL   string
	ForecastTimeout   time.Duration
	InsightsCacheTTL  time.Duration
	KafkaBrokers      []string
	KafkaAlertsTopic  string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
// A .env file (or the file named by ENV_FILE) is loaded first without overriding the environment.
func LoadConfig() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		ForecastBaseURL:   envDefault("FORECAST_BASE_URL", DefaultForecastBaseURL),
		ForecastTimeout:   forecastclient.DefaultTimeout,
		InsightsCacheTTL:  DefaultInsightsCacheTTL,
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertsTopic:  envDefault("KAFKA_ALERTS_TOPIC", invalerts.DefaultTopic),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric: %q", cfg.Port)
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("REDIS_DB must be a non-negative integer")
		}
		cfg.RedisDB = db
	}
	if raw := strings.TrimSpace(os.Getenv("FORECAST_TIMEOUT")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return Config{}, fmt.Errorf("FORECAST_TIMEOUT must be a positive duration such as 5s")
		}
		cfg.ForecastTimeout = timeout
	}
	if raw := strings.TrimSpace(os.Getenv("INSIGHTS_CACHE_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl < 0 {
			return Config{}, fmt.Errorf("INSIGHTS_CACHE_TTL must be a duration such as 30s, or 0 to disable")
		}
		cfg.InsightsCacheTTL = ttl
	}
	backend, err := resolveStoreBackend(strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND"))), cfg)
	if err != nil {
		return Config{}, err
	}
	cfg.StoreBackend = backend
	return cfg, nil
}

func resolveStoreBackend(requested string, cfg Config) (string, error) {
	switch requested {
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
			return "", errors.New("STORE_BACKEND=postgres requires POSTGRES_DSN")
		}
		return StorePostgres, nil
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return "", errors.New("STORE_BACKEND=redis requires REDIS_ADDR")
		}
		return StoreRedis, nil
	default:
		return "", fmt.Errorf("STORE_BACKEND must be one of memory, postgres, redis; got %q", requested)
	}
}

func loadDotEnv() error {
	path := envDefault("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
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

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
