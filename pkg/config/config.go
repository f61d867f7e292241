// Copyright 2025 Certen Protocol

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process-level configuration for the HTM aggregation service,
// read from environment variables.
type Config struct {
	// Server
	ListenAddr  string
	MetricsAddr string

	// Storage backend: "memdb" or "goleveldb".
	KVBackend string
	DataDir   string

	// Database (optional operational audit log)
	DatabaseEnabled   bool
	DBHost            string
	DBPort            int
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Service identity
	ValidatorID string
	LogLevel    string

	// Batch collector
	BatchMaxSize    int
	BatchMaxAge     time.Duration
	BatchAutoFlush  bool
	BatchFlushEvery time.Duration

	// World defaults config file (YAML), optional.
	WorldDefaultsPath string
}

// Load reads configuration from environment variables, applying safe
// defaults for anything not explicitly set.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  getEnv("HTM_LISTEN_ADDR", "0.0.0.0:8080"),
		MetricsAddr: getEnv("HTM_METRICS_ADDR", "0.0.0.0:9090"),

		KVBackend: getEnv("HTM_KV_BACKEND", "memdb"),
		DataDir:   getEnv("HTM_DATA_DIR", "./data"),

		DatabaseEnabled:   getEnvBool("HTM_DB_ENABLED", false),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnvInt("DB_PORT", 5432),
		DBUser:            getEnv("DB_USER", "htm"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "htm_audit"),
		DBSSLMode:         getEnv("DB_SSL_MODE", "require"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),

		ValidatorID: getEnv("HTM_VALIDATOR_ID", "validator-default"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		BatchMaxSize:    getEnvInt("HTM_BATCH_MAX_SIZE", 1000),
		BatchMaxAge:     getEnvDuration("HTM_BATCH_MAX_AGE", 15*time.Minute),
		BatchAutoFlush:  getEnvBool("HTM_BATCH_AUTO_FLUSH", true),
		BatchFlushEvery: getEnvDuration("HTM_BATCH_FLUSH_EVERY", time.Minute),

		WorldDefaultsPath: getEnv("HTM_WORLD_DEFAULTS_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that configuration required for a production deployment
// is present and sane. Call after Load().
func (c *Config) Validate() error {
	var errs []string

	if c.KVBackend != "memdb" && c.KVBackend != "goleveldb" {
		errs = append(errs, fmt.Sprintf("HTM_KV_BACKEND must be memdb or goleveldb, got %q", c.KVBackend))
	}
	if c.DatabaseEnabled && c.DBName == "" {
		errs = append(errs, "DB_NAME is required when HTM_DB_ENABLED is set")
	}
	if c.BatchMaxSize <= 0 {
		errs = append(errs, "HTM_BATCH_MAX_SIZE must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// DSN builds a libpq connection string from the individual DB_* fields.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
