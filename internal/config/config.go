// Package config loads the application configuration: logging, metrics export and
// the lowest-precedence layer of loader options.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
)

// Environment variables read by LoadFromEnv.
const (
	EnvConfigPath      = "DOCHARVEST_CONFIG"
	EnvLogLevel        = "DOCHARVEST_LOG_LEVEL"
	EnvLogFormat       = "DOCHARVEST_LOG_FORMAT"
	EnvMetricsTextfile = "DOCHARVEST_METRICS_TEXTFILE"
)

// Config is the application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	// Defaults sit beneath a request's global_config when options are merged.
	Defaults docobj.Options `yaml:"defaults"`
}

// MetricsConfig controls Prometheus export.
type MetricsConfig struct {
	// Textfile is written on exit when set.
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging:  LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Defaults: docobj.Options{},
	}
}

// Load reads a YAML configuration file. Environment variables in the file are
// expanded before parsing. An empty path yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ConfigError("configuration file not found").WithContext("file", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").WithContext("file", path).Build()
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").WithContext("file", path).Build()
	}
	if cfg.Defaults == nil {
		cfg.Defaults = docobj.Options{}
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads .env files, then the file named by DOCHARVEST_CONFIG, then
// applies the DOCHARVEST_* overrides.
func LoadFromEnv() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	cfg, err := Load(os.Getenv(EnvConfigPath))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = LogFormat(v)
	}
	if v := os.Getenv(EnvMetricsTextfile); v != "" {
		c.Metrics.Textfile = v
	}
	return c.normalize()
}

func (c *Config) normalize() error {
	level := LogLevelInfo
	if c.Logging.Level != "" {
		v, err := logLevelNormalizer.NormalizeWithError(string(c.Logging.Level))
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, fmt.Sprintf("invalid logging.level %q", c.Logging.Level)).Build()
		}
		level = v
	}
	format := LogFormatText
	if c.Logging.Format != "" {
		v, err := logFormatNormalizer.NormalizeWithError(string(c.Logging.Format))
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, fmt.Sprintf("invalid logging.format %q", c.Logging.Format)).Build()
		}
		format = v
	}
	c.Logging.Level = level
	c.Logging.Format = format
	return nil
}
