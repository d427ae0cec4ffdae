package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig points the client at the board service.
type ServerConfig struct {
	// BaseURL is the root URL of the REST API (e.g., http://localhost:8080).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every request, including its retries.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is how often a rate-limited (429) request is retried.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// CacheConfig selects where board snapshots and notifications are kept.
type CacheConfig struct {
	// Backend is "sqlite" (default), "redis" or "none".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`

	// RedisURL is a redis:// URL used when Backend is "redis".
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`

	// TTLSec is how long Redis keeps a board snapshot.
	TTLSec int `mapstructure:"ttl_sec" yaml:"ttl_sec"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	// RefreshIntervalSec is how often the active board is reloaded in the
	// background. Zero disables background refresh.
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
}

// LogConfig controls the log file. The terminal belongs to the UI, so
// logs never go to stderr while it runs.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// Timeout returns the request timeout as a duration.
func (c ServerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RefreshInterval returns the background refresh interval.
func (c DisplayConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

// TTL returns the Redis snapshot TTL.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// DefaultConfigDir returns ~/.config/kanban.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "kanban")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/kanban/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	dir := DefaultConfigDir()
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.timeout_sec", 10)
	v.SetDefault("server.max_retries", 3)
	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.path", filepath.Join(dir, "cache.db"))
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.ttl_sec", 86400)
	v.SetDefault("display.refresh_interval_sec", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, "kanban.log"))
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults apply. Every key can be
// overridden with a KANBAN_ environment variable (KANBAN_SERVER_BASE_URL).
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("kanban")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Server.TimeoutSec <= 0 {
		cfg.Server.TimeoutSec = 10
	}
	if cfg.Server.MaxRetries < 0 {
		cfg.Server.MaxRetries = 0
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", map[string]any{
		"base_url":    cfg.Server.BaseURL,
		"timeout_sec": cfg.Server.TimeoutSec,
		"max_retries": cfg.Server.MaxRetries,
	})
	v.Set("cache", map[string]any{
		"backend":   cfg.Cache.Backend,
		"path":      cfg.Cache.Path,
		"redis_url": cfg.Cache.RedisURL,
		"ttl_sec":   cfg.Cache.TTLSec,
	})
	v.Set("display", map[string]any{
		"refresh_interval_sec": cfg.Display.RefreshIntervalSec,
	})
	v.Set("log", map[string]any{
		"level": cfg.Log.Level,
		"file":  cfg.Log.File,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// SetConfigValue updates a single dotted key (e.g., "server.base_url") in
// the file at path, keeping every other value.
func SetConfigValue(path, key, value string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	known := false
	for _, k := range v.AllKeys() {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown config key %q", key)
	}

	v.Set(key, value)

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing value for %s: %w", key, err)
	}
	return SaveConfig(path, cfg)
}
