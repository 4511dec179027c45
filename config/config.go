package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration
type Config struct {
	Host            string
	Port            int
	DBPath          string
	AutoMigrate     bool
	AdminAddr       string
	MaxRequestBytes int64
	NotifyTimeout   time.Duration
	LogLevel        string
	LogFormat       string
}

// Default returns the configuration used when no variable is set
func Default() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		DBPath:          "corporate_data.db",
		AutoMigrate:     true,
		MaxRequestBytes: 64 * 1024,
		NotifyTimeout:   5 * time.Second,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads an optional .env file and then the process environment
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load the env vars: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup function
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid AUTO_MIGRATE %q: %w", v, err)
		}
		cfg.AutoMigrate = b
	}
	cfg.AdminAddr = getenv("ADMIN_ADDR")
	if v := getenv("MAX_REQUEST_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MAX_REQUEST_BYTES %q: %w", v, err)
		}
		cfg.MaxRequestBytes = n
	}
	if v := getenv("NOTIFY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NOTIFY_TIMEOUT %q: %w", v, err)
		}
		cfg.NotifyTimeout = d
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("max request bytes must be positive, got %d", c.MaxRequestBytes)
	}
	if c.NotifyTimeout < 0 {
		return fmt.Errorf("notify timeout must not be negative, got %s", c.NotifyTimeout)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}
	return nil
}

// ListenAddr returns the TCP address the dispatcher binds to
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
