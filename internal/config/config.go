package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Auth0
	Auth0Domain   string
	Auth0Audience string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Budget reconciliation
	Budget BudgetConfig

	// Rate limiting per owner
	RateLimitPerMinute int
	RateLimitBurst     int
}

// BudgetConfig holds the knobs that shape ledger validation and reconciliation
type BudgetConfig struct {
	Categories      []string
	LedgerScope     domain.LedgerScope
	WarningPercent  decimal.Decimal
	CriticalPercent decimal.Decimal
	Location        *time.Location
}

// Thresholds returns the configured alert thresholds
func (b BudgetConfig) Thresholds() domain.AlertThresholds {
	return domain.AlertThresholds{Warning: b.WarningPercent, Critical: b.CriticalPercent}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Env:           getEnv("ENV", "development"),
	}

	var err error
	if cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "true")); err != nil {
		return nil, fmt.Errorf("MIGRATE_ON_START: %w", err)
	}
	if cfg.RateLimitPerMinute, err = strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "120")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}

	cfg.Budget.Categories = domain.DefaultCategories
	if raw := getEnv("CATEGORIES", ""); raw != "" {
		cfg.Budget.Categories = splitList(raw)
	}
	if cfg.Budget.LedgerScope, err = domain.ParseLedgerScope(getEnv("LEDGER_SCOPE", string(domain.LedgerScopeAllTime))); err != nil {
		return nil, fmt.Errorf("LEDGER_SCOPE: %w", err)
	}
	if cfg.Budget.WarningPercent, err = decimal.NewFromString(getEnv("ALERT_WARNING_PERCENT", "85")); err != nil {
		return nil, fmt.Errorf("ALERT_WARNING_PERCENT: %w", err)
	}
	if cfg.Budget.CriticalPercent, err = decimal.NewFromString(getEnv("ALERT_CRITICAL_PERCENT", "100")); err != nil {
		return nil, fmt.Errorf("ALERT_CRITICAL_PERCENT: %w", err)
	}
	if cfg.Budget.Location, err = time.LoadLocation(getEnv("BUDGET_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("BUDGET_TIMEZONE: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if len(c.Budget.Categories) == 0 {
		return fmt.Errorf("CATEGORIES must list at least one category")
	}
	if c.Budget.WarningPercent.GreaterThan(c.Budget.CriticalPercent) {
		return fmt.Errorf("ALERT_WARNING_PERCENT must not exceed ALERT_CRITICAL_PERCENT")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
