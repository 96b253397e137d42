// Package config loads socratiz settings from defaults, an optional YAML
// file and the environment, in that order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Environment variables read by FromEnv.
const (
	EnvConfig      = "SOCRATIZ_CONFIG"
	EnvDB          = "SOCRATIZ_DB"
	EnvBackend     = "SOCRATIZ_BACKEND"
	EnvRedisAddr   = "REDIS_ADDR"
	EnvRedisPrefix = "SOCRATIZ_REDIS_PREFIX"
	EnvLog         = "SOCRATIZ_LOG"
	EnvLogFile     = "SOCRATIZ_LOG_FILE"
)

// Config represents the CLI configuration for socratiz.
type Config struct {
	Backend string      `yaml:"backend"`
	DBPath  string      `yaml:"db_path"` // empty means store.DefaultDBPath
	Redis   RedisConfig `yaml:"redis"`
	Log     LogConfig   `yaml:"log"`
}

type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	Prefix      string        `yaml:"prefix"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // dev, prod or off
	File string `yaml:"file"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Backend: BackendSQLite,
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			Prefix:      "socratiz:",
			DialTimeout: 5 * time.Second,
		},
		Log: LogConfig{Mode: "off"},
	}
}

// Load reads configuration from path, falling back to defaults when the
// file is missing, then applies environment overrides. An empty path
// consults SOCRATIZ_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.DBPath, EnvDB)
	set(&c.Backend, EnvBackend)
	set(&c.Redis.Addr, EnvRedisAddr)
	set(&c.Redis.Prefix, EnvRedisPrefix)
	set(&c.Log.Mode, EnvLog)
	set(&c.Log.File, EnvLogFile)
}

// Validate checks fields that cannot be defaulted.
func (c Config) Validate() error {
	c.Backend = strings.ToLower(c.Backend)
	switch c.Backend {
	case BackendSQLite:
	case BackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return fmt.Errorf("config: redis backend requires redis.addr")
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	return nil
}
