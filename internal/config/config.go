// Package config loads application settings from a YAML file and
// MONEYCALC_* environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. MONEYCALC_API_KEY
const EnvPrefix = "MONEYCALC"

// ErrInvalidConfig is returned when loaded settings fail validation
var ErrInvalidConfig = errors.New("invalid configuration")

type (
	// Config is the root of the application settings
	Config struct {
		API    APIConfig    `mapstructure:"api"`
		Cache  CacheConfig  `mapstructure:"cache"`
		Server ServerConfig `mapstructure:"server"`
		DB     DBConfig     `mapstructure:"db"`
		Log    LogConfig    `mapstructure:"log"`
	}

	APIConfig struct {
		BaseURL    string        `mapstructure:"base_url"`
		Key        string        `mapstructure:"key"`
		Timeout    time.Duration `mapstructure:"timeout"`
		MaxRetries int           `mapstructure:"max_retries"`
	}

	CacheConfig struct {
		ValidityMinutes int           `mapstructure:"validity_minutes"`
		SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	}

	ServerConfig struct {
		Port            int           `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	}

	DBConfig struct {
		Path string `mapstructure:"path"`
	}

	LogConfig struct {
		Level string `mapstructure:"level"`
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://v6.exchangerate-api.com")
	v.SetDefault("api.key", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("cache.validity_minutes", 30)
	v.SetDefault("cache.sweep_interval", 5*time.Minute)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("db.path", "./data")
	v.SetDefault("log.level", "info")
}

// Load reads settings from path (skipped when empty), applies environment
// overrides and validates the result
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error while reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error while decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings needed to start the application
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return fmt.Errorf("%w: api.key is required (set %s_API_KEY)", ErrInvalidConfig, EnvPrefix)
	}

	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("%w: api.base_url cannot be empty", ErrInvalidConfig)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", ErrInvalidConfig)
	}

	if c.API.MaxRetries < 1 {
		return fmt.Errorf("%w: api.max_retries must be at least 1", ErrInvalidConfig)
	}

	if c.Cache.ValidityMinutes < 0 {
		return fmt.Errorf("%w: cache.validity_minutes must be non-negative", ErrInvalidConfig)
	}

	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("%w: cache.sweep_interval must be positive", ErrInvalidConfig)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalidConfig, c.Server.Port)
	}

	return nil
}
