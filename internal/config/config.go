package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/reconcile"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Compare  CompareConfig
	Schedule ScheduleConfig
	Storage  StorageConfig
	Upload   UploadConfig
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

// JWTConfig holds JWT configuration. An empty secret disables authentication.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

type CompareConfig struct {
	OvertimeThresholdMinutes int
	PunchPolicy              reconcile.PunchPolicy
}

type ScheduleConfig struct {
	DefaultYearMonth string
}

type StorageConfig struct {
	BasePath string
}

type UploadConfig struct {
	Retention time.Duration
	MaxBytes  int64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "shift_reconcile"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Compare configuration
	threshold, err := strconv.Atoi(getEnv("OVERTIME_THRESHOLD_MINUTES", strconv.Itoa(reconcile.DefaultOvertimeThresholdMinutes)))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERTIME_THRESHOLD_MINUTES: %w", err)
	}
	policy, err := reconcile.ParsePunchPolicy(getEnv("PUNCH_POLICY", string(reconcile.PunchFirst)))
	if err != nil {
		return nil, fmt.Errorf("invalid PUNCH_POLICY: %w", err)
	}

	config.Compare = CompareConfig{
		OvertimeThresholdMinutes: threshold,
		PunchPolicy:              policy,
	}

	config.Schedule = ScheduleConfig{
		DefaultYearMonth: getEnv("DEFAULT_YEAR_MONTH", "2026/01"),
	}

	// Upload archive
	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
	}

	retention, err := time.ParseDuration(getEnv("UPLOAD_RETENTION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_RETENTION: %w", err)
	}
	maxBytes, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", strconv.Itoa(10<<20)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES: %w", err)
	}

	config.Upload = UploadConfig{
		Retention: retention,
		MaxBytes:  maxBytes,
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
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.MaxConns <= 0 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS, and DB_MAX_CONNS positive")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Compare.OvertimeThresholdMinutes < 0 {
		return fmt.Errorf("OVERTIME_THRESHOLD_MINUTES must not be negative")
	}
	if _, _, ok := timenorm.ParseYearMonth(c.Schedule.DefaultYearMonth); !ok {
		return fmt.Errorf("DEFAULT_YEAR_MONTH must be YYYY/MM or YYYYMM")
	}
	if c.Storage.BasePath == "" {
		return fmt.Errorf("STORAGE_BASE_PATH is required")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// AuthEnabled reports whether API routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWT.Secret != ""
}

// LogLevel parses LOG_LEVEL.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.App.LogLevel, err)
	}
	return level, nil
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

// PoolOptions returns the pool sizing for database.NewPostgreSQLDB.
func (c *Config) PoolOptions() database.PoolOptions {
	return database.PoolOptions{
		MaxConns: c.Database.MaxConns,
		MinConns: c.Database.MinConns,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
