package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port        string
	DatabaseURL string
	StoreDriver string
	LogLevel    string

	ClerkSecretKey string

	FCMServiceAccountJSON string
	FCMCredentialsFile    string
	PushMaxAttempts       int
	PushBackoff           time.Duration

	RulesTimezone   string
	ReminderWorkers int
	ReminderCatchUp time.Duration

	JobSecret    string
	RedisAddr    string
	RunScheduler bool

	MetricsUser string
	MetricsPass string
	PprofSecret string
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "3333"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		StoreDriver:           getEnv("STORE_DRIVER", StorePostgres),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		ClerkSecretKey:        getEnv("CLERK_SECRET_KEY", ""),
		FCMServiceAccountJSON: getEnv("FCM_SERVICE_ACCOUNT_JSON", ""),
		FCMCredentialsFile:    getEnv("FCM_CREDENTIALS_FILE", "./serviceAccountKey.json"),
		PushMaxAttempts:       getEnvInt("PUSH_MAX_ATTEMPTS", 3),
		PushBackoff:           getEnvDuration("PUSH_BACKOFF", 500*time.Millisecond),
		RulesTimezone:         getEnv("RULES_TIMEZONE", "UTC"),
		ReminderWorkers:       getEnvInt("REMINDER_WORKERS", 4),
		ReminderCatchUp:       getEnvDuration("REMINDER_CATCHUP", 24*time.Hour),
		JobSecret:             getEnv("JOB_SECRET", ""),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RunScheduler:          getEnvBool("RUN_SCHEDULER", true),
		MetricsUser:           getEnv("METRICS_USER", ""),
		MetricsPass:           getEnv("METRICS_PASS", ""),
		PprofSecret:           getEnv("PPROF_SECRET", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if _, err := time.LoadLocation(c.RulesTimezone); err != nil {
		return fmt.Errorf("invalid RULES_TIMEZONE %q: %w", c.RulesTimezone, err)
	}
	if c.PushMaxAttempts < 1 {
		return fmt.Errorf("PUSH_MAX_ATTEMPTS must be at least 1")
	}
	if c.ReminderWorkers < 1 {
		return fmt.Errorf("REMINDER_WORKERS must be at least 1")
	}
	return nil
}

// RulesLocation is the location used for day and week boundaries in
// challenge rules. Validate guarantees it loads.
func (c *Config) RulesLocation() *time.Location {
	loc, err := time.LoadLocation(c.RulesTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
