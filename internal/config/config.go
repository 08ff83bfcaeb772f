// Package config loads CLI settings from a config file, the environment and
// flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	configName = "tomd"
	envPrefix  = "TOMD"

	defaultUserAgent = "tomd/1.0 (+https://github.com/conductor-oss/tomd)"
	defaultTimeout   = 30 * time.Second
)

// Config holds the settings the CLI passes to the engine.
type Config struct {
	UserAgent    string        `mapstructure:"user_agent" validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	KeepDataURIs bool          `mapstructure:"keep_data_uris"`
	Extended     bool          `mapstructure:"extended"`
	FrontMatter  bool          `mapstructure:"front_matter"`
	LogFormat    string        `mapstructure:"log_format" validate:"oneof=text json"`
}

// New returns a viper instance with defaults and environment binding applied.
// Config files are searched in the working directory and ~/.config/tomd.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("keep_data_uris", false)
	v.SetDefault("extended", true)
	v.SetDefault("front_matter", true)
	v.SetDefault("log_format", "text")

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", configName))
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads cfgFile (or the default search paths when empty), unmarshals and
// validates the result. A missing default config file is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
