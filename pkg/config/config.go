// Package config loads the ambient settings of habitable: logging, tracing
// and metrics. The input file and the filter predicate are fixed and are not
// part of the configuration.
//
// Settings are resolved in this order, later wins:
//   - built-in defaults
//   - habitable.yaml in the working directory, if present
//   - HABITABLE_* environment variables (a .env file is loaded first)
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	log, err := logger.New(cfg.Log.LoggerConfig())
package config

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/habitable/pkg/errors"
	"github.com/ajitpratap0/habitable/pkg/logger"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "HABITABLE"

// FileName is the base name of the optional config file.
const FileName = "habitable"

// Config is the root configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Encoding    string `mapstructure:"encoding" yaml:"encoding"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// TracingConfig controls span export to stderr.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled" yaml:"enabled"`
	SamplingRate float64 `mapstructure:"sampling_rate" yaml:"sampling_rate"`
}

// MetricsConfig controls the end-of-run metrics dump.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// LoggerConfig converts the log section for logger.New.
func (c LogConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Level,
		Encoding:    c.Encoding,
		Development: c.Development,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sampling_rate", 1.0)
	v.SetDefault("metrics.enabled", false)
}

// Load resolves the configuration from the working directory and environment.
func Load() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load .env")
	}
	return LoadFrom(".")
}

// LoadFrom resolves the configuration using dir to look for habitable.yaml.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section for values the program cannot honour.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		return errors.New(errors.ErrorTypeConfig, "unknown log level").
			WithDetail("log.level", c.Log.Level)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return errors.New(errors.ErrorTypeConfig, "unknown log encoding").
			WithDetail("log.encoding", c.Log.Encoding)
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return errors.New(errors.ErrorTypeConfig, "sampling rate must be within [0, 1]").
			WithDetail("tracing.sampling_rate", c.Tracing.SamplingRate)
	}
	return nil
}
