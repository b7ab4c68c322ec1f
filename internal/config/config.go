// Package config loads settings for the submitter binary.
// Values are read by viper from an optional config file with CRPT_-prefixed
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hulio7/crptapi/crpt"
)

type Config struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	Limiter     LimiterConfig `mapstructure:"limiter"`
}

type LimiterConfig struct {
	Window time.Duration `mapstructure:"window"`
	Limit  int           `mapstructure:"limit"`

	// When RedisAddr is set the quota is shared across processes through
	// the sorted set at RedisKey; otherwise the limiter is in-memory.
	RedisAddr string `mapstructure:"redis_addr"`
	RedisKey  string `mapstructure:"redis_key"`
}

// Load reads the configuration. An empty path uses defaults and environment
// only; an explicit path that cannot be read is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("endpoint", crpt.DefaultEndpoint)
	v.SetDefault("timeout", "30s")
	v.SetDefault("limiter.window", "1s")
	v.SetDefault("limiter.limit", 5)
	v.SetDefault("limiter.redis_key", "crpt:submissions")

	v.SetEnvPrefix("CRPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
