// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	OddsSource OddsSourceConfig `yaml:"odds_source"`
	Cache      CacheConfig      `yaml:"cache"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	HTTP       HTTPConfig       `yaml:"http"`
}

// PipelineConfig tunes the scan and deep-dive phases.
type PipelineConfig struct {
	EdgeThreshold   float64 `yaml:"edge_threshold"`
	AssumedProb     float64 `yaml:"assumed_prob"`
	TopN            int     `yaml:"top_n"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// OddsSourceConfig tunes the guard around the odds collaborator.
type OddsSourceConfig struct {
	Name                string  `yaml:"name"`
	RPS                 float64 `yaml:"rps"`
	Burst               int     `yaml:"burst"`
	BreakerMaxRequests  uint32  `yaml:"breaker_max_requests"`
	BreakerIntervalSecs int     `yaml:"breaker_interval_seconds"`
	BreakerTimeoutSecs  int     `yaml:"breaker_timeout_seconds"`
	BreakerFailures     uint32  `yaml:"breaker_consecutive_failures"`
}

// CacheConfig selects and tunes the result cache backend.
type CacheConfig struct {
	Backend    string `yaml:"backend"` // memory | redis
	MaxEntries int    `yaml:"max_entries"`
	Redis      struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// PostgresConfig enables the optional prediction archive when DSN is set.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// HTTPConfig tunes the read-only HTTP surface.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads, defaults, and validates the configuration at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Pipeline.EdgeThreshold == 0 {
		c.Pipeline.EdgeThreshold = 3.0
	}
	if c.Pipeline.AssumedProb == 0 {
		c.Pipeline.AssumedProb = 55.0
	}
	if c.Pipeline.TopN == 0 {
		c.Pipeline.TopN = 3
	}
	if c.Pipeline.CacheTTLSeconds == 0 {
		c.Pipeline.CacheTTLSeconds = 600
	}
	if c.OddsSource.Name == "" {
		c.OddsSource.Name = "odds-api"
	}
	if c.OddsSource.RPS == 0 {
		c.OddsSource.RPS = 2
	}
	if c.OddsSource.Burst == 0 {
		c.OddsSource.Burst = 4
	}
	if c.OddsSource.BreakerMaxRequests == 0 {
		c.OddsSource.BreakerMaxRequests = 3
	}
	if c.OddsSource.BreakerIntervalSecs == 0 {
		c.OddsSource.BreakerIntervalSecs = 60
	}
	if c.OddsSource.BreakerTimeoutSecs == 0 {
		c.OddsSource.BreakerTimeoutSecs = 30
	}
	if c.OddsSource.BreakerFailures == 0 {
		c.OddsSource.BreakerFailures = 3
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 128
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Postgres.TimeoutSeconds == 0 {
		c.Postgres.TimeoutSeconds = 5
	}
	if c.HTTP.Host == "" {
		c.HTTP.Host = "127.0.0.1"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
}

func (c *Config) validate() error {
	if c.Pipeline.EdgeThreshold < 0 {
		return fmt.Errorf("pipeline.edge_threshold must be non-negative")
	}
	if c.Pipeline.AssumedProb <= 0 || c.Pipeline.AssumedProb >= 100 {
		return fmt.Errorf("pipeline.assumed_prob must be in (0,100)")
	}
	if c.Pipeline.TopN < 1 {
		return fmt.Errorf("pipeline.top_n must be at least 1")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	return nil
}

// CacheTTL returns the result cache TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Pipeline.CacheTTLSeconds) * time.Second
}

// PostgresTimeout returns the archive statement timeout.
func (c Config) PostgresTimeout() time.Duration {
	return time.Duration(c.Postgres.TimeoutSeconds) * time.Second
}
