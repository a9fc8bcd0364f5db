// Package config loads the process-wide service configuration. It is
// populated once at startup and passed by reference to the components
// that need it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds connection pool settings. An empty DSN selects
// the in-memory store (development and tests).
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// AuthConfig holds the signing secret and credential lifetimes.
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
	CodeTTL    time.Duration
	BcryptCost int
}

// NotifierConfig holds outbound verification-message settings. An
// empty endpoint selects the log-only sender.
type NotifierConfig struct {
	Endpoint string
	APIKey   string
	From     string
	To       string
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// Config is the immutable process-wide configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Notifier NotifierConfig
	Logging  LoggingConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getenv("SERVER_HOST", ""),
			Port: getenvInt("PORT", 8080),
		},
		Database: DatabaseConfig{
			Driver:          getenv("DATABASE_DRIVER", "postgres"),
			DSN:             os.Getenv("DATABASE_DSN"),
			MaxOpenConns:    getenvInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getenvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			SessionTTL: getenvDuration("SESSION_TTL", 7*24*time.Hour),
			CodeTTL:    getenvDuration("VERIFICATION_CODE_TTL", 24*time.Hour),
			BcryptCost: getenvInt("BCRYPT_COST", 12),
		},
		Notifier: NotifierConfig{
			Endpoint: os.Getenv("NOTIFY_ENDPOINT"),
			APIKey:   os.Getenv("NOTIFY_API_KEY"),
			From:     getenv("NOTIFY_FROM", "onboarding@piggyvest.local"),
			To:       os.Getenv("NOTIFY_TO"),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Database.DSN != "" && cfg.Database.Driver == "" {
		return nil, fmt.Errorf("DATABASE_DRIVER is required when DATABASE_DSN is set")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
