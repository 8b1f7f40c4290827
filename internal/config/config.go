// Package config loads the flowstudio settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/flowstudio/internal/logging"
	"github.com/aretw0/flowstudio/pkg/layout"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// ErrInvalidConfig is returned when the settings do not validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings of the flowstudio commands.
type Config struct {
	Log        LogConfig    `mapstructure:"log" yaml:"log"`
	HTTP       HTTPConfig   `mapstructure:"http" yaml:"http"`
	Store      StoreConfig  `mapstructure:"store" yaml:"store"`
	UILanguage string       `mapstructure:"ui_language" yaml:"ui_language"`
	Layout     LayoutConfig `mapstructure:"layout" yaml:"layout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type HTTPConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
}

// StoreConfig selects where bot configs are kept.
type StoreConfig struct {
	Kind   string       `mapstructure:"kind" yaml:"kind"`
	File   FileConfig   `mapstructure:"file" yaml:"file"`
	Redis  RedisConfig  `mapstructure:"redis" yaml:"redis"`
	SQLite SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

type FileConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	// Lock serializes saves across editor instances.
	Lock    bool          `mapstructure:"lock" yaml:"lock"`
	LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LayoutConfig sizes canvas nodes for placement.
type LayoutConfig struct {
	NodeWidth  float64 `mapstructure:"node_width" yaml:"node_width"`
	NodeHeight float64 `mapstructure:"node_height" yaml:"node_height"`
	Margin     float64 `mapstructure:"margin" yaml:"margin"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Log:  LogConfig{Level: "info", Format: string(logging.FormatText)},
		HTTP: HTTPConfig{Addr: ":8080", Metrics: true},
		Store: StoreConfig{
			Kind:   StoreFile,
			File:   FileConfig{Path: ".flowstudio/configs"},
			Redis:  RedisConfig{Addr: "localhost:6379", LockTTL: 10 * time.Second},
			SQLite: SQLiteConfig{Path: ".flowstudio/configs.db"},
		},
		UILanguage: "en",
		Layout: LayoutConfig{
			NodeWidth:  layout.DefaultNodeWidth,
			NodeHeight: layout.DefaultNodeHeight,
			Margin:     layout.DefaultMargin,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode applies the YAML document data to cfg. Keys absent from data keep
// their current values. Durations accept strings like "30s".
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode settings: %w", err)
	}
	return nil
}

// Validate checks the settings that cannot be fixed by defaults.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("%w: unknown store kind %q", ErrInvalidConfig, c.Store.Kind)
	}
	if c.Layout.NodeWidth <= 0 || c.Layout.NodeHeight <= 0 || c.Layout.Margin < 0 {
		return fmt.Errorf("%w: node size must be positive", ErrInvalidConfig)
	}
	return nil
}
