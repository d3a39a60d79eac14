// Package config centralizes environment-based configuration for the API.
package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"paisatrack/internal/logger"
)

// Config holds all application configuration loaded from the environment.
type Config struct {
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth
	JWTSecret    string
	JWTExpiresIn time.Duration

	// Ledger
	DefaultCurrency string

	// Response cache
	CacheTTL time.Duration

	// Recurring rule scheduler, cron spec. Default fires at the top of every hour.
	SchedulerSpec string

	// Budget alert mail. Alerts are logged instead of mailed when SMTPHost is empty.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the application configuration, loading it on first use.
// A .env file is honored when present; real environment variables win.
func Get() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logger.Get().Debugw("no .env file found, using environment variables")
		}

		cfg = &Config{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),

			DBHost:     getEnv("DB_HOST", "localhost"),
			DBPort:     getEnv("DB_PORT", "5432"),
			DBUser:     getEnv("DB_USER", "postgres"),
			DBPassword: getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "paisatrack"),
			DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

			JWTSecret:    getEnv("JWT_SECRET", ""),
			JWTExpiresIn: getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),

			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "INR"),

			CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

			SchedulerSpec: getEnv("SCHEDULER_SPEC", "0 * * * *"),

			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPFrom:     getEnv("SMTP_FROM", ""),
		}

		if cfg.JWTSecret == "" && cfg.Env == "production" {
			logger.Get().Fatalw("JWT_SECRET must be set in production")
		}
	})
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Get().Warnw("invalid integer in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Get().Warnw("invalid duration in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return d
}
