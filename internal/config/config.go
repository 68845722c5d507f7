// Package config loads the dashboard settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"ipdash/internal/refresh"
	"ipdash/internal/services"
)

// NotifyConfig controls toasts and alerts.
type NotifyConfig struct {
	ToastTTL     time.Duration `yaml:"toast_ttl"`
	Desktop      bool          `yaml:"desktop"`        // mirror toasts as desktop notifications
	BellOnChange bool          `yaml:"bell_on_change"` // ring the terminal bell when the IP changes
}

// NetworkConfig controls the interface watcher.
type NetworkConfig struct {
	Watch    bool          `yaml:"watch"`
	Interval time.Duration `yaml:"interval"`
}

// LogConfig selects the log level and file.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the whole settings file.
type Config struct {
	Source          string        `yaml:"source"` // URL or path of data.json
	Profile         string        `yaml:"profile"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	AutoRefresh     bool          `yaml:"auto_refresh"`
	DownloadDir     string        `yaml:"download_dir"`
	Notify          NotifyConfig  `yaml:"notify"`
	Network         NetworkConfig `yaml:"network"`
	Log             LogConfig     `yaml:"log"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Source:          "data.json",
		Profile:         "portal",
		RefreshInterval: 30 * time.Second,
		FetchTimeout:    10 * time.Second,
		AutoRefresh:     true,
		DownloadDir:     services.DefaultDownloadDir(),
		Notify: NotifyConfig{
			ToastTTL:     3 * time.Second,
			BellOnChange: true,
		},
		Network: NetworkConfig{
			Watch:    true,
			Interval: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
			File:  "ipdash.log",
		},
	}
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ipdash.yaml"
	}
	return filepath.Join(dir, "ipdash", "config.yaml")
}

// Load reads a YAML config file and merges it with defaults and the
// environment. A missing file is not an error. The result is not validated,
// so callers can apply their own overrides before calling Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.DownloadDir = expandHome(cfg.DownloadDir)
	cfg.Log.File = expandHome(cfg.Log.File)
	if !strings.Contains(cfg.Source, "://") {
		cfg.Source = expandHome(cfg.Source)
	}
	return cfg, nil
}

// applyEnv overlays environment variables on top of config values.
func (c *Config) applyEnv() {
	if v := os.Getenv("IPDASH_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("IPDASH_PROFILE"); v != "" {
		c.Profile = v
	}
	if v := os.Getenv("IPDASH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("source must not be empty")
	}
	if _, err := refresh.LookupProfile(c.Profile); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	if c.RefreshInterval < time.Second {
		return fmt.Errorf("refresh_interval must be at least 1s, got %s", c.RefreshInterval)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.Notify.ToastTTL <= 0 {
		return fmt.Errorf("notify.toast_ttl must be positive, got %s", c.Notify.ToastTTL)
	}
	if c.Network.Watch && c.Network.Interval < 100*time.Millisecond {
		return fmt.Errorf("network.interval must be at least 100ms, got %s", c.Network.Interval)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[1:])
	}
	return p
}
