package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr           string  `yaml:"addr"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address          string `yaml:"address"`
		Password         string `yaml:"password"`
		DB               int    `yaml:"db"`
		SlotCacheSeconds int    `yaml:"slot_cache_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		PrometheusEnabled bool   `yaml:"prometheus_enabled"`
		PrometheusAddr    string `yaml:"prometheus_addr"`
	} `yaml:"monitoring"`

	Booking struct {
		SlotStrideMinutes    int `yaml:"slot_stride_minutes"`
		SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
	} `yaml:"booking"`
}

// Load reads the YAML config at path, expanding ${ENV_VAR} placeholders and
// applying defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a config with defaults only, for runs without a file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RateLimitRPS <= 0 {
		c.Server.RateLimitRPS = 10
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 20
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/bookings.db"
	}
	if c.Monitoring.PrometheusAddr == "" {
		c.Monitoring.PrometheusAddr = ":9090"
	}
	if c.Booking.SlotStrideMinutes <= 0 {
		c.Booking.SlotStrideMinutes = 30
	}
	if c.Booking.SweepIntervalSeconds <= 0 {
		c.Booking.SweepIntervalSeconds = 60
	}
}

// SweepInterval returns the periodic sweep cadence.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Booking.SweepIntervalSeconds) * time.Second
}

// SlotCacheTTL returns the redis slot cache TTL; zero disables caching.
func (c *Config) SlotCacheTTL() time.Duration {
	return time.Duration(c.Redis.SlotCacheSeconds) * time.Second
}
