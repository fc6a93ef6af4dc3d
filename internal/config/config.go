package config

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. EZPOOL_POOL_WORKERS for pool.workers.
const EnvPrefix = "EZPOOL"

// Config represents the configuration of the ezpool server.
type Config struct {
	LogLevel  string       `mapstructure:"log_level"`
	LogFormat string       `mapstructure:"log_format"`
	Pool      PoolConfig   `mapstructure:"pool"`
	Server    ServerConfig `mapstructure:"server"`
}

// PoolConfig represents the thread pool configuration.
type PoolConfig struct {
	Workers uint   `mapstructure:"workers"`
	Name    string `mapstructure:"name"`
}

// ServerConfig represents the listener configuration.
type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	SleepDelay  time.Duration `mapstructure:"sleep_delay"`
	MaxPending  int64         `mapstructure:"max_pending"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Pool: PoolConfig{
			Workers: 4,
			Name:    "ezpool",
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:7878",
			SleepDelay:  5 * time.Second,
			MaxPending:  256,
			ReadTimeout: 10 * time.Second,
		},
	}
}

// Load reads the configuration from v. Defaults come from New, then the
// config file at path (if not empty), then EZPOOL_* environment variables,
// then any flags already bound to v.
func Load(v *viper.Viper, path string) (*Config, error) {

	setDefaults(v, New())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values a pool or listener cannot work around. A zero
// worker count is left to the pool, which reports it as a creation error.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be text or json", c.LogFormat)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}

	if c.Server.MaxPending <= 0 {
		return fmt.Errorf("server.max_pending must be positive")
	}

	if c.Server.SleepDelay < 0 {
		return fmt.Errorf("server.sleep_delay must be non-negative")
	}

	return nil
}

// Logger builds the logrus logger described by the configuration.
func (c *Config) Logger() (*log.Logger, error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}

	logger := log.New()
	logger.SetLevel(level)

	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return logger, nil
}

// setDefaults registers every key of def with v so that environment
// variables are picked up for all of them.
func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("pool.workers", def.Pool.Workers)
	v.SetDefault("pool.name", def.Pool.Name)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.metrics_addr", def.Server.MetricsAddr)
	v.SetDefault("server.sleep_delay", def.Server.SleepDelay)
	v.SetDefault("server.max_pending", def.Server.MaxPending)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
}
