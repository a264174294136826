package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the signal generator.
// Strategy parameters do not live here; they are immutable values in
// internal/strategy. This covers accounts, collaborators and I/O only.
type Config struct {
	Env string // development, staging, production

	// Account/broker API
	Broker BrokerConfig

	// Market data provider
	MarketData MarketDataConfig

	// Database (order history / run audit)
	Database DatabaseConfig

	// Email report
	Mail MailConfig

	// Order CSV output
	OutputDir string

	// Status API
	APIPort string

	// Daily run schedule (cron spec, exchange-local time)
	Schedule ScheduleConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// BrokerConfig holds the trading account API configuration.
type BrokerConfig struct {
	BaseURL   string
	APIKey    string
	AccountID string
	User      string // positions are filtered to this user
	IsLive    bool
}

// MarketDataConfig holds the bar/universe provider configuration.
type MarketDataConfig struct {
	BaseURL        string
	APIKey         string
	RatePerSecond  float64 // provider request budget
	RequestTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL      string
	Enabled  bool
	MaxConns int
	MinConns int

	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MailConfig holds SMTP settings for the daily report.
type MailConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Username   string
	Password   string
	From       string
	Recipients []string
	AdminList  []string // receives error reports
}

// ScheduleConfig holds the cron daemon settings.
type ScheduleConfig struct {
	Spec     string // cron expression
	Timezone string // exchange timezone, e.g. America/New_York
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Broker: BrokerConfig{
			BaseURL:   getEnv("BROKER_BASE_URL", "http://localhost:8000"),
			APIKey:    getEnv("BROKER_API_KEY", ""),
			AccountID: getEnv("BROKER_ACCOUNT_ID", ""),
			User:      getEnv("BROKER_USER", ""),
			IsLive:    getEnvAsBool("BROKER_IS_LIVE", false),
		},

		MarketData: MarketDataConfig{
			BaseURL:        getEnv("MARKETDATA_BASE_URL", "http://localhost:9000"),
			APIKey:         getEnv("MARKETDATA_API_KEY", ""),
			RatePerSecond:  getEnvAsFloat("MARKETDATA_RATE_PER_SECOND", 20),
			RequestTimeout: getEnvAsDuration("MARKETDATA_REQUEST_TIMEOUT", "15s"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Enabled:         getEnvAsBool("DATABASE_ENABLED", true),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Mail: MailConfig{
			Enabled:    getEnvAsBool("MAIL_ENABLED", false),
			Host:       getEnv("MAIL_HOST", ""),
			Port:       getEnv("MAIL_PORT", "587"),
			Username:   getEnv("MAIL_USERNAME", ""),
			Password:   getEnv("MAIL_PASSWORD", ""),
			From:       getEnv("MAIL_FROM", ""),
			Recipients: getEnvAsList("MAIL_RECIPIENTS", nil),
			AdminList:  getEnvAsList("MAIL_ADMIN_LIST", nil),
		},

		OutputDir: getEnv("OUTPUT_DIR", "history"),
		APIPort:   getEnv("API_PORT", "8089"),

		Schedule: ScheduleConfig{
			Spec:     getEnv("SCHEDULE_SPEC", "0 30 16 * * MON-FRI"),
			Timezone: getEnv("SCHEDULE_TIMEZONE", "America/New_York"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when DATABASE_ENABLED=true")
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			return fmt.Errorf("MAIL_HOST is required when MAIL_ENABLED=true")
		}
		if len(c.Mail.Recipients) == 0 {
			return fmt.Errorf("MAIL_RECIPIENTS is required when MAIL_ENABLED=true")
		}
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("SCHEDULE_TIMEZONE is invalid: %w", err)
	}

	return nil
}

// ExchangeLocation returns the configured exchange timezone.
// Validity is checked during Load.
func (c *Config) ExchangeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
