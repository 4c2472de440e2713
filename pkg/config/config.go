// Package config resolves process settings from flags, SINKFORM_ environment
// variables and an optional config file through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-sinkform/pkg/i18n"
)

// EnvPrefix namespaces environment overrides, e.g. SINKFORM_LOG_LEVEL.
const EnvPrefix = "SINKFORM"

// Keys shared by flags, environment variables and config files.
const (
	KeyListen         = "listen"
	KeyLocale         = "locale"
	KeyCatalogDir     = "catalog-dir"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
	KeyConnectTimeout = "connect-timeout"
)

var (
	// ErrInvalidTimeout is returned for non positive connection timeouts.
	ErrInvalidTimeout = errors.New("config: connect-timeout must be positive")
	// ErrMissingLocale is returned when the locale resolves to an empty value.
	ErrMissingLocale = errors.New("config: locale is required")
)

// Config is the resolved process configuration.
type Config struct {
	Listen         string        `mapstructure:"listen"`
	Locale         string        `mapstructure:"locale"`
	CatalogDir     string        `mapstructure:"catalog-dir"`
	LogLevel       string        `mapstructure:"log-level"`
	LogFormat      string        `mapstructure:"log-format"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

// Defaults lists the value of every key when nothing overrides it.
var Defaults = map[string]any{
	KeyListen:         ":8080",
	KeyLocale:         i18n.DefaultLocale,
	KeyCatalogDir:     "",
	KeyLogLevel:       "info",
	KeyLogFormat:      "json",
	KeyConnectTimeout: 10 * time.Second,
}

// New returns a viper instance seeded with Defaults and reading SINKFORM_
// environment variables.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (when set) into v and decodes the result.
func Load(v *viper.Viper, file string) (Config, error) {
	if file = strings.TrimSpace(file); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Locale = strings.TrimSpace(cfg.Locale)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable zero value.
func (c Config) Validate() error {
	if c.Locale == "" {
		return ErrMissingLocale
	}
	if c.ConnectTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Catalog returns the embedded catalogs, overlaid with CatalogDir when set.
func (c Config) Catalog() (*i18n.Catalog, error) {
	if c.CatalogDir == "" {
		return i18n.Default()
	}
	info, err := os.Stat(c.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("config: catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config: catalog dir %s is not a directory", c.CatalogDir)
	}
	return i18n.Load(os.DirFS(c.CatalogDir))
}
