// Package config loads engine configuration from a YAML file with
// environment-variable overrides. A .env file, when present, is loaded
// first so local development matches deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the serve command needs to run the engine.
type Config struct {
	// Root is the drive root all documents and attachments live under.
	Root string `yaml:"root"`

	// Listen is the HTTP transport bind address.
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// AutosaveInterval is how often the autosave ticker fires. The
	// engine additionally debounces to at most one save per second.
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Root:             "data",
		Listen:           ":8090",
		LogLevel:         "info",
		LogFormat:        "text",
		AutosaveInterval: time.Second,
	}
}

// Load builds the effective configuration: defaults, then the YAML file
// at path (if any), then environment overrides. A missing .env file is
// not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the serve command cannot honor.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("config: root must not be empty")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: log_format %q: must be text or json", c.LogFormat)
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("config: autosave_interval must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("BILLFOLD_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("BILLFOLD_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("BILLFOLD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BILLFOLD_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("BILLFOLD_AUTOSAVE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: BILLFOLD_AUTOSAVE_INTERVAL %q: %w", v, err)
		}
		cfg.AutosaveInterval = d
	}
	return nil
}
