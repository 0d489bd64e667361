package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/homeenergy/core/metrics"
)

// EnvPrefix marks environment variables that override file settings.
// Nested keys use a double underscore: HE_HISTORY__PATH sets history.path.
const EnvPrefix = "HE_"

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.yaml"

type Config struct {
	History HistoryConfig  `json:"history"`
	Model   ModelConfig    `json:"model"`
	Server  ServerConfig   `json:"server"`
	Metrics metrics.Config `json:"metrics"`
	Logging LoggingConfig  `json:"logging"`
	Sentry  SentryConfig   `json:"sentry"`
	Alerts  AlertsConfig   `json:"alerts"`
}

// Default returns the configuration used when no file is present.
func Default() (*Config, error) {
	return load("", false)
}

// Load reads the file at path, applies environment overrides and defaults,
// then validates every section.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// LoadOptional behaves like Load but falls back to defaults plus environment
// overrides when the file does not exist.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return load("", false)
	}
	return load(path, true)
}

func load(path string, withFile bool) (*Config, error) {
	k := koanf.New(".")
	if withFile {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	prefix := strings.ToLower(EnvPrefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), prefix)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// SetDefaults fills unset fields of every section.
func (c *Config) SetDefaults() {
	c.History.SetDefaults()
	c.Model.SetDefaults()
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
	c.Alerts.SetDefaults()
}

// Validate checks every section and reports the first failure.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"history", c.History.Validate},
		{"model", c.Model.Validate},
		{"server", c.Server.Validate},
		{"logging", c.Logging.Validate},
		{"alerts", c.Alerts.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}
