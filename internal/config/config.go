package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// PayrollConfig tunes run processing.
type PayrollConfig struct {
	// Workers should stay at or below Database.MaxConns.
	Workers         int
	EmployeeTimeout time.Duration
	FYStartMonth    int
	TaxCountry      string
	PayslipPrefix   string

	// Runs left in processing longer than StaleRunAfter are failed by the recovery job.
	StaleRunAfter    time.Duration
	RecoveryInterval time.Duration
}

func Load() (*Config, error) {
	// A missing .env is fine; the process environment may carry everything.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Payroll configuration
	workers, err := getEnvInt("PAYROLL_WORKERS", 8)
	if err != nil {
		return nil, err
	}
	fyStartMonth, err := getEnvInt("PAYROLL_FY_START_MONTH", 4)
	if err != nil {
		return nil, err
	}
	employeeTimeout, err := time.ParseDuration(getEnv("PAYROLL_EMPLOYEE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_EMPLOYEE_TIMEOUT: %w", err)
	}
	staleRunAfter, err := time.ParseDuration(getEnv("PAYROLL_STALE_RUN_AFTER", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_STALE_RUN_AFTER: %w", err)
	}
	recoveryInterval, err := time.ParseDuration(getEnv("PAYROLL_RECOVERY_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_RECOVERY_INTERVAL: %w", err)
	}

	config.Payroll = PayrollConfig{
		Workers:         workers,
		EmployeeTimeout: employeeTimeout,
		FYStartMonth:    fyStartMonth,
		TaxCountry:      strings.ToUpper(getEnv("PAYROLL_TAX_COUNTRY", "IN")),
		PayslipPrefix:   getEnv("PAYROLL_PAYSLIP_PREFIX", "PS"),

		StaleRunAfter:    staleRunAfter,
		RecoveryInterval: recoveryInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.Payroll.Workers <= 0 {
		return fmt.Errorf("PAYROLL_WORKERS must be positive")
	}
	if c.Payroll.Workers > int(c.Database.MaxConns) {
		return fmt.Errorf("PAYROLL_WORKERS (%d) must not exceed DB_MAX_CONNS (%d)", c.Payroll.Workers, c.Database.MaxConns)
	}
	if c.Payroll.FYStartMonth < 1 || c.Payroll.FYStartMonth > 12 {
		return fmt.Errorf("PAYROLL_FY_START_MONTH must be between 1 and 12")
	}
	if c.Payroll.EmployeeTimeout < 0 {
		return fmt.Errorf("PAYROLL_EMPLOYEE_TIMEOUT must not be negative")
	}
	if len(c.Payroll.TaxCountry) != 2 {
		return fmt.Errorf("PAYROLL_TAX_COUNTRY must be a two-letter country code")
	}
	if c.Payroll.PayslipPrefix == "" {
		return fmt.Errorf("PAYROLL_PAYSLIP_PREFIX is required")
	}
	if c.Payroll.StaleRunAfter <= 0 || c.Payroll.RecoveryInterval <= 0 {
		return fmt.Errorf("PAYROLL_STALE_RUN_AFTER and PAYROLL_RECOVERY_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
