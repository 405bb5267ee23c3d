package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	JWTSecret     string
	DBPath        string
	WorkingDays   int
	SessionTTL    time.Duration
	AdminUsername string
	AdminPassword string
	Workers       int
	QueueSize     int
	LogLevel      string
}

const (
	defaultDBPath      = "payroll-bot.db"
	defaultWorkingDays = 22
	defaultSessionTTL  = 12 * time.Hour
	defaultAdmin       = "admin"
	defaultWorkers     = 4
	defaultQueueSize   = 32
	defaultLogLevel    = "info"
)

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		TelegramToken: getenv("TELEGRAM_TOKEN"),
		JWTSecret:     getenv("JWT_SECRET"),
		DBPath:        stringOr(getenv("DB_PATH"), defaultDBPath),
		AdminUsername: stringOr(getenv("ADMIN_USERNAME"), defaultAdmin),
		AdminPassword: getenv("ADMIN_PASSWORD"),
		LogLevel:      stringOr(getenv("LOG_LEVEL"), defaultLogLevel),
	}
	if cfg.TelegramToken == "" {
		return nil, ErrNoToken{}
	}
	if cfg.JWTSecret == "" {
		return nil, ErrNoSecret{}
	}

	var err error
	if cfg.WorkingDays, err = positiveInt(getenv, "WORKING_DAYS", defaultWorkingDays); err != nil {
		return nil, err
	}
	if cfg.Workers, err = positiveInt(getenv, "WORKERS", defaultWorkers); err != nil {
		return nil, err
	}
	if cfg.QueueSize, err = positiveInt(getenv, "QUEUE_SIZE", defaultQueueSize); err != nil {
		return nil, err
	}

	cfg.SessionTTL = defaultSessionTTL
	if raw := getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, &InvalidValueError{Key: "SESSION_TTL", Value: raw}
		}
		cfg.SessionTTL = ttl
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, &InvalidValueError{Key: "LOG_LEVEL", Value: cfg.LogLevel}
	}
	return cfg, nil
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func positiveInt(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, &InvalidValueError{Key: key, Value: raw}
	}
	return n, nil
}

type ErrNoToken struct{}

func (e ErrNoToken) Error() string {
	return "TELEGRAM_TOKEN is not set"
}

type ErrNoSecret struct{}

func (e ErrNoSecret) Error() string {
	return "JWT_SECRET is not set"
}

type InvalidValueError struct {
	Key   string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Key)
}
