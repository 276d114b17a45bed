// Package config loads fetchqb settings from an optional YAML file, the
// environment (FETCHQB_ prefix) and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/fetchqb/internal/logging"
)

// EnvPrefix prefixes environment variables: log-level is FETCHQB_LOG_LEVEL.
const EnvPrefix = "FETCHQB"

// Keys shared by the config file, the environment and flags.
const (
	KeyLogLevel          = "log-level"
	KeyLogFormat         = "log-format"
	KeyEntityPlaceholder = "entity-placeholder"
	KeyCatalog           = "catalog"
	KeyDB                = "db"
	KeyWatchDebounce     = "watch-debounce"
	KeySelectedCount     = "selected-count"
	KeyPreserveWildcards = "preserve-wildcards"
)

// Config is the resolved configuration.
type Config struct {
	LogLevel          string        `mapstructure:"log-level"`
	LogFormat         string        `mapstructure:"log-format"`
	EntityPlaceholder string        `mapstructure:"entity-placeholder"`
	Catalog           string        `mapstructure:"catalog"`
	DB                string        `mapstructure:"db"`
	WatchDebounce     time.Duration `mapstructure:"watch-debounce"`
	SelectedCount     int           `mapstructure:"selected-count"`
	PreserveWildcards bool          `mapstructure:"preserve-wildcards"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:          "info",
		LogFormat:         logging.FormatPretty,
		EntityPlaceholder: "entity",
		DB:                "fetchqb.db",
		WatchDebounce:     100 * time.Millisecond,
		SelectedCount:     8,
	}
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyEntityPlaceholder, d.EntityPlaceholder)
	v.SetDefault(KeyCatalog, d.Catalog)
	v.SetDefault(KeyDB, d.DB)
	v.SetDefault(KeyWatchDebounce, d.WatchDebounce)
	v.SetDefault(KeySelectedCount, d.SelectedCount)
	v.SetDefault(KeyPreserveWildcards, d.PreserveWildcards)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every flag in flags whose name is a config key.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if !isKey(f.Name) {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %q: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

func isKey(name string) bool {
	switch name {
	case KeyLogLevel, KeyLogFormat, KeyEntityPlaceholder, KeyCatalog, KeyDB,
		KeyWatchDebounce, KeySelectedCount, KeyPreserveWildcards:
		return true
	default:
		return false
	}
}

// Load reads configFile when set, otherwise fetchqb.yaml from the working
// directory if one exists, and decodes the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("fetchqb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatJSON, logging.FormatPretty:
	default:
		return fmt.Errorf("config: %s must be %s or %s, got %q", KeyLogFormat, logging.FormatJSON, logging.FormatPretty, c.LogFormat)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("config: %s must not be negative", KeyWatchDebounce)
	}
	if c.SelectedCount < 0 {
		return fmt.Errorf("config: %s must not be negative", KeySelectedCount)
	}
	return nil
}

// Logging returns the logger configuration writing to w.
func (c *Config) Logging(w io.Writer) logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat, Writer: w}
}
