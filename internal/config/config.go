package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds the whole application configuration,
// populated from environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Loan     LoanConfig
	Jobs     JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // hours
}

// LoanConfig holds the lending business rules.
// RenewalLimit = 0 means unlimited renewals.
type LoanConfig struct {
	PeriodDays   int
	RenewalLimit int
	FinePerDay   decimal.Decimal
}

// JobConfig holds cron specs for scheduled background jobs
type JobConfig struct {
	OverdueNotifyCron string
}

// Load reads config from environment variables
func Load() (*Config, error) {
	finePerDay, err := decimal.NewFromString(getEnv("LOAN_FINE_PER_DAY", "0.50"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOAN_FINE_PER_DAY: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "library"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry:  getEnvInt("JWT_ACCESS_EXPIRY", 15),  // 15 minutes
			RefreshTokenExpiry: getEnvInt("JWT_REFRESH_EXPIRY", 72), // 3 days
		},
		Loan: LoanConfig{
			PeriodDays:   getEnvInt("LOAN_PERIOD_DAYS", 14),
			RenewalLimit: getEnvInt("LOAN_RENEWAL_LIMIT", 0),
			FinePerDay:   finePerDay,
		},
		Jobs: JobConfig{
			OverdueNotifyCron: getEnv("JOB_OVERDUE_NOTIFY_CRON", "0 8 * * *"), // Daily at 8 AM
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for invalid combinations
func (c *Config) Validate() error {
	// Production must not run with defaults for secrets
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if c.Loan.PeriodDays < 1 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be at least 1, got %d", c.Loan.PeriodDays)
	}
	if c.Loan.RenewalLimit < 0 {
		return fmt.Errorf("LOAN_RENEWAL_LIMIT must not be negative, got %d", c.Loan.RenewalLimit)
	}
	if c.Loan.FinePerDay.IsNegative() {
		return fmt.Errorf("LOAN_FINE_PER_DAY must not be negative, got %s", c.Loan.FinePerDay)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
