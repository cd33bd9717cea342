package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries the service settings. Everything is env-driven with
// sensible local-dev defaults; the CLI layer may override individual values
// through flags.
type Config struct {
	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	CDPBaseURL     string
	RenderDelay    time.Duration
	WaitTimeout    time.Duration
	ExecuteTimeout time.Duration

	QueueSize        int
	Workers          int
	LeaseTTL         time.Duration
	LeaseWaitTimeout time.Duration
	IdempotencyTTL   time.Duration

	ArtifactDir     string
	ArtifactBaseURL string
	MerchantDBPath  string

	// RedisAddr switches lease/idempotency to Redis when set; PostgresDSN
	// switches run records to Postgres when set. Empty keeps the in-memory
	// implementations.
	RedisAddr   string
	PostgresDSN string
}

func Load() Config {
	return Config{
		HTTPAddr:     envOrDefault("ORDERFLOW_HTTP_ADDR", ":8080"),
		ReadTimeout:  durationOrDefault("ORDERFLOW_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: durationOrDefault("ORDERFLOW_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  durationOrDefault("ORDERFLOW_IDLE_TIMEOUT", 60*time.Second),

		CDPBaseURL:     envOrDefault("ORDERFLOW_CDP_BASE_URL", "http://127.0.0.1:9222"),
		RenderDelay:    durationOrDefault("ORDERFLOW_RENDER_DELAY", 2*time.Second),
		WaitTimeout:    durationOrDefault("ORDERFLOW_WAIT_TIMEOUT", 12*time.Second),
		ExecuteTimeout: durationOrDefault("ORDERFLOW_EXECUTE_TIMEOUT", 3*time.Minute),

		QueueSize:        intOrDefault("ORDERFLOW_QUEUE_SIZE", 64),
		Workers:          intOrDefault("ORDERFLOW_WORKERS", 1),
		LeaseTTL:         durationOrDefault("ORDERFLOW_LEASE_TTL", 5*time.Minute),
		LeaseWaitTimeout: durationOrDefault("ORDERFLOW_LEASE_WAIT_TIMEOUT", 2*time.Minute),
		IdempotencyTTL:   durationOrDefault("ORDERFLOW_IDEMPOTENCY_TTL", 24*time.Hour),

		ArtifactDir:     envOrDefault("ORDERFLOW_ARTIFACTS_DIR", "artifacts"),
		ArtifactBaseURL: envOrDefault("ORDERFLOW_ARTIFACT_BASE_URL", "/artifacts"),
		MerchantDBPath:  envOrDefault("ORDERFLOW_MERCHANT_DB", ".orderflow/merchants.db"),

		RedisAddr:   os.Getenv("ORDERFLOW_REDIS_ADDR"),
		PostgresDSN: os.Getenv("ORDERFLOW_POSTGRES_DSN"),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func intOrDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
