// Package config loads service configuration from an optional YAML
// file with environment variable overrides. Environment always wins,
// so container deployments can ignore the file entirely.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr string `yaml:"addr"`
	Env  string `yaml:"env"` // dev | prod

	DatabaseURL string `yaml:"database_url"`

	// EncryptionKey is the master secret the credential cipher derives
	// its key from. Required.
	EncryptionKey string `yaml:"encryption_key"`

	TelegramAPIBase string        `yaml:"telegram_api_base"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`

	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`

	BotServiceURL string `yaml:"bot_service_url"`
	ServiceToken  string `yaml:"service_token"`

	Cache CacheConfig `yaml:"cache"`
}

type CacheConfig struct {
	Kind      string        `yaml:"kind"` // memory | redis | none
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
}

func defaults() *Config {
	return &Config{
		Addr:            ":8001",
		Env:             "dev",
		TelegramAPIBase: "https://api.telegram.org",
		HTTPTimeout:     10 * time.Second,
		SessionTTL:      24 * time.Hour,
		SweepInterval:   time.Hour,
		Cache: CacheConfig{
			Kind: "memory",
			TTL:  5 * time.Minute,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_PATH (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.EncryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envString(&cfg.Addr, "ADDR")
	envString(&cfg.Env, "APP_ENV")
	envString(&cfg.DatabaseURL, "DATABASE_URL")
	envString(&cfg.EncryptionKey, "ENCRYPTION_KEY")
	envString(&cfg.TelegramAPIBase, "TELEGRAM_API_BASE")
	envDuration(&cfg.HTTPTimeout, "HTTP_TIMEOUT")
	envDuration(&cfg.SessionTTL, "SESSION_TTL")
	envDuration(&cfg.SweepInterval, "SWEEP_INTERVAL")
	envString(&cfg.BotServiceURL, "BOT_SERVICE_URL")
	envString(&cfg.ServiceToken, "SERVICE_TO_SERVICE_SECRET")
	envString(&cfg.Cache.Kind, "CACHE_KIND")
	envDuration(&cfg.Cache.TTL, "CACHE_TTL")
	envString(&cfg.Cache.RedisAddr, "REDIS_ADDR")
	envInt(&cfg.Cache.RedisDB, "REDIS_DB")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
