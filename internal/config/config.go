// Package config loads gateway configuration from the environment,
// optionally overlaid on a YAML file named by BYWAY_CONFIG. The
// environment always wins; the file only supplies defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for byway-gateway
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// UpstreamConfig holds remote marketplace API configuration
type UpstreamConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	PageSize        int           `yaml:"page_size"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SessionConfig holds session and draft lifetime configuration
type SessionConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	DraftTTL time.Duration `yaml:"draft_ttl"`
}

// Load loads configuration from the BYWAY_CONFIG YAML file (when set)
// and environment variables, environment taking precedence.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Upstream: UpstreamConfig{
			BaseURL:         "http://localhost:5282/api",
			Timeout:         30 * time.Second,
			PageSize:        50,
			RefreshInterval: 10 * time.Minute,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			DB:      0,
		},
		Session: SessionConfig{
			TTL:      24 * time.Hour,
			DraftTTL: 2 * time.Hour,
		},
	}

	if path := os.Getenv("BYWAY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvAsInt("SERVER_PORT", cfg.Server.Port)

	cfg.Upstream.BaseURL = getEnv("UPSTREAM_BASE_URL", cfg.Upstream.BaseURL)
	cfg.Upstream.Timeout = getEnvAsDuration("UPSTREAM_TIMEOUT", cfg.Upstream.Timeout)
	cfg.Upstream.PageSize = getEnvAsInt("UPSTREAM_PAGE_SIZE", cfg.Upstream.PageSize)
	cfg.Upstream.RefreshInterval = getEnvAsDuration("CATALOG_REFRESH_INTERVAL", cfg.Upstream.RefreshInterval)

	cfg.Redis.Address = getEnv("REDIS_ADDRESS", cfg.Redis.Address)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.Session.TTL = getEnvAsDuration("SESSION_TTL", cfg.Session.TTL)
	cfg.Session.DraftTTL = getEnvAsDuration("DRAFT_TTL", cfg.Session.DraftTTL)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required")
	}

	if c.Upstream.PageSize < 1 {
		return fmt.Errorf("invalid upstream page size: %d", c.Upstream.PageSize)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
