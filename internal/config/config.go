package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Render   RenderConfig   `mapstructure:"render"`
	Export   ExportConfig   `mapstructure:"export"`
	Loader   LoaderConfig   `mapstructure:"loader"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig controls where and how much session state is persisted.
type SessionConfig struct {
	Key      string `mapstructure:"key"`
	MaxBytes int    `mapstructure:"max_bytes"`
}

// RenderConfig holds presentation settings.
type RenderConfig struct {
	Style string `mapstructure:"style"`
	Width int    `mapstructure:"width"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type LoaderConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type WatchConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Path   string `mapstructure:"path"`
	Level  string `mapstructure:"level"`
	Stderr bool   `mapstructure:"stderr"`
}

// Load reads configuration from file and env. Env var overrides use prefix MDTABS_.
func Load() (Config, error) {
	v := viper.New()
	home := os.Getenv("HOME")

	// default values
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "mdtabs", "mdtabs.db"))
	v.SetDefault("session.key", "mdtabs.session")
	v.SetDefault("session.max_bytes", 5<<20)
	v.SetDefault("render.style", "catppuccin-mocha")
	v.SetDefault("render.width", 100)
	v.SetDefault("export.dir", filepath.Join(home, "Documents", "mdtabs"))
	v.SetDefault("loader.max_bytes", 8<<20)
	v.SetDefault("watch.enabled", true)
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "mdtabs", "mdtabs.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.stderr", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MDTABS_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "mdtabs"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MDTABS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("MDTABS_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "mdtabs", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("session.key", cfg.Session.Key)
	v.Set("session.max_bytes", cfg.Session.MaxBytes)
	v.Set("render.style", cfg.Render.Style)
	v.Set("render.width", cfg.Render.Width)
	v.Set("export.dir", cfg.Export.Dir)
	v.Set("loader.max_bytes", cfg.Loader.MaxBytes)
	v.Set("watch.enabled", cfg.Watch.Enabled)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.stderr", cfg.Log.Stderr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
