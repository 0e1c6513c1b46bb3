// Package config loads server settings from the environment, reading a
// .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Port            int
	ShutdownTimeout time.Duration

	// Auth
	SecretKey        string
	TokenTTL         time.Duration
	BcryptWorkFactor int

	// Database. DatabaseURL wins over the individual DB_* parts.
	DatabaseURL        string
	DBDriver           string
	DBHost             string
	DBPort             int
	DBUser             string
	DBPassword         string
	DBName             string
	DBSSLMode          string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBQueryTimeout     time.Duration
	DBConnectAttempts  int
	SlowQueryThreshold time.Duration

	// Logging
	LogLevel string
}

// Load reads .env (if present) and the environment. Values already set in
// the environment take precedence over .env.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}

	cfg := &Config{
		// Defaults
		Port:               3001,
		ShutdownTimeout:    10 * time.Second,
		SecretKey:          "secret-dev",
		BcryptWorkFactor:   12,
		DBDriver:           "postgres",
		DBHost:             "localhost",
		DBPort:             5432,
		DBName:             "jobly",
		DBSSLMode:          "disable",
		DBMaxOpenConns:     25,
		DBMaxIdleConns:     10,
		DBQueryTimeout:     5 * time.Second,
		DBConnectAttempts:  5,
		SlowQueryThreshold: 200 * time.Millisecond,
		LogLevel:           "info",
	}

	var err error
	setString(&cfg.SecretKey, "SECRET_KEY")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSLMODE")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.Port, "PORT"},
		{&cfg.BcryptWorkFactor, "BCRYPT_WORK_FACTOR"},
		{&cfg.DBPort, "DB_PORT"},
		{&cfg.DBMaxOpenConns, "DB_MAX_OPEN_CONNS"},
		{&cfg.DBMaxIdleConns, "DB_MAX_IDLE_CONNS"},
		{&cfg.DBConnectAttempts, "DB_CONNECT_ATTEMPTS"},
	}
	for _, v := range ints {
		if err = setInt(v.dst, v.key); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&cfg.ShutdownTimeout, "SHUTDOWN_TIMEOUT"},
		{&cfg.TokenTTL, "TOKEN_TTL"},
		{&cfg.DBQueryTimeout, "DB_QUERY_TIMEOUT"},
		{&cfg.SlowQueryThreshold, "SLOW_QUERY_THRESHOLD"},
	}
	for _, v := range durations {
		if err = setDuration(v.dst, v.key); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}

	if c.SecretKey == "" {
		return fmt.Errorf("secret key is empty")
	}

	if c.TokenTTL < 0 {
		return fmt.Errorf("token ttl must not be negative: %v", c.TokenTTL)
	}

	if c.BcryptWorkFactor < 4 || c.BcryptWorkFactor > 31 {
		return fmt.Errorf("bcrypt work factor must be between 4 and 31")
	}

	switch c.DBDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.DBDriver)
	}

	if c.DatabaseURL == "" && c.DBName == "" {
		return fmt.Errorf("database name is empty")
	}

	if c.DBConnectAttempts < 1 {
		return fmt.Errorf("database connect attempts must be at least 1")
	}

	if c.DBQueryTimeout <= 0 {
		return fmt.Errorf("database query timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + strconv.Itoa(c.Port) }
