// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type DatabaseConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// BootstrapConfig seeds a single tenant and admin API key on first run. All
// three fields are required together: either none are set, or all three are.
type BootstrapConfig struct {
	TenantName string
	KeyName    string
	RawAPIKey  string
}

func (b BootstrapConfig) Enabled() bool {
	return b.TenantName != "" || b.KeyName != "" || b.RawAPIKey != ""
}

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
	Bootstrap BootstrapConfig
}

// Load reads configuration from the environment, applying defaults for
// optional values and failing fast on missing required ones.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			DSN:            dsn,
			MaxConns:       int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("DB_MIN_CONNS", 0)),
			ConnectTimeout: getEnvAsDuration("DB_CONNECT_TIMEOUT_SECONDS", 5*time.Second),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Bootstrap: BootstrapConfig{
			TenantName: os.Getenv("BOOTSTRAP_TENANT_NAME"),
			KeyName:    os.Getenv("BOOTSTRAP_KEY_NAME"),
			RawAPIKey:  os.Getenv("BOOTSTRAP_API_KEY"),
		},
	}

	if cfg.Database.MaxConns <= 0 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be a positive integer")
	}

	b := cfg.Bootstrap
	if b.Enabled() && (b.TenantName == "" || b.KeyName == "" || b.RawAPIKey == "") {
		return nil, fmt.Errorf("BOOTSTRAP_TENANT_NAME, BOOTSTRAP_KEY_NAME, and BOOTSTRAP_API_KEY must all be set together")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	v := os.Getenv(name)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
