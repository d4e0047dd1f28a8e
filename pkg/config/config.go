package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret-change-me"

// Config holds environment driven settings for the API server.
type Config struct {
	Env            string
	Host           string
	Port           string
	AllowedOrigins []string

	LogLevel string
	Log      LogConfig

	// JWTSecret is shared with the identity provider that issues access tokens.
	JWTSecret string

	RateLimitPerMinute int
	StatsCacheTTL      time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
}

// LogConfig controls file outputs and their rotation.
type LogConfig struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// RedisConfig contains cache connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
	RunMigrations   bool
}

// Load builds a Config from environment variables with sensible defaults.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		Host:               getEnv("APP_HOST", "0.0.0.0"),
		Port:               getEnv("APP_PORT", "8080"),
		LogLevel:           getEnv("APP_LOG_LEVEL", "info"),
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		RateLimitPerMinute: getEnvAsInt("APP_RATE_LIMIT_PER_MINUTE", 100),
		StatsCacheTTL:      time.Duration(getEnvAsInt("APP_STATS_CACHE_TTL_SECONDS", 30)) * time.Second,
		Log: LogConfig{
			Dir:        getEnv("APP_LOG_DIR", "logs"),
			MaxSizeMB:  getEnvAsInt("APP_LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("APP_LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("APP_LOG_MAX_AGE_DAYS", 28),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	cfg.AllowedOrigins = splitAndTrim(os.Getenv("APP_ALLOWED_ORIGINS"))

	database, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}
	cfg.Database = database

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("APP_RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if c.StatsCacheTTL < 0 {
		errs = append(errs, errors.New("APP_STATS_CACHE_TTL_SECONDS cannot be negative"))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes cannot be negative"))
	}

	return errors.Join(errs...)
}

// ServerAddress joins the host and port into a listen address.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsProduction reports whether the app is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DSN builds a PostgreSQL DSN for gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
		d.TimeZone,
	)
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	cfg := DatabaseConfig{
		Host:            getEnv("APP_DB_HOST", "127.0.0.1"),
		Port:            getEnv("APP_DB_PORT", "5432"),
		User:            getEnv("APP_DB_USER", "postgres"),
		Password:        os.Getenv("APP_DB_PASSWORD"),
		Name:            getEnv("APP_DB_NAME", "coursetrack"),
		SSLMode:         getEnv("APP_DB_SSLMODE", "disable"),
		TimeZone:        getEnv("APP_DB_TIMEZONE", "UTC"),
		MaxIdleConns:    getEnvAsInt("APP_DB_MAX_IDLE_CONNS", 5),
		MaxOpenConns:    getEnvAsInt("APP_DB_MAX_OPEN_CONNS", 20),
		ConnMaxLifetime: getEnvAsInt("APP_DB_CONN_MAX_LIFETIME", 1800),
		ConnMaxIdleTime: getEnvAsInt("APP_DB_CONN_MAX_IDLE_TIME", 300),
		RunMigrations:   getEnvAsBool("APP_DB_RUN_MIGRATIONS", false),
	}

	// DATABASE_URL overrides the individual connection fields but keeps pool settings.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		if err := applyDatabaseURL(&cfg, dbURL); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// applyDatabaseURL copies the parts of a postgres:// URL into cfg.
func applyDatabaseURL(cfg *DatabaseConfig, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL: unsupported scheme %q", parsed.Scheme)
	}

	if host := parsed.Hostname(); host != "" {
		cfg.Host = host
	}
	if port := parsed.Port(); port != "" {
		cfg.Port = port
	}
	if parsed.User != nil {
		cfg.User = parsed.User.Username()
		if password, ok := parsed.User.Password(); ok {
			cfg.Password = password
		}
	}
	if name := strings.TrimPrefix(parsed.Path, "/"); name != "" {
		cfg.Name = name
	}

	query := parsed.Query()
	if sslmode := query.Get("sslmode"); sslmode != "" {
		cfg.SSLMode = sslmode
	}
	if tz := query.Get("timezone"); tz != "" {
		cfg.TimeZone = tz
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return fallback
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var cleaned []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
