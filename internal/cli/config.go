package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// ConfigName is the base name of the optional config file (semmeta.yaml).
const ConfigName = "semmeta"

// EnvPrefix prefixes environment overrides, e.g. SEMMETA_JOURNAL.
const EnvPrefix = "SEMMETA"

// Config is the file and environment configuration. Flags override it.
type Config struct {
	Taxonomy string `mapstructure:"taxonomy"`
	Journal  string `mapstructure:"journal"`
	LogLevel string `mapstructure:"log_level"`
	Format   string `mapstructure:"format"`
}

// LoadConfig reads configuration. An explicit path must exist; otherwise
// semmeta.yaml is looked up in the working directory and is optional.
// Environment variables with the SEMMETA_ prefix override file values.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("taxonomy", "")
	v.SetDefault("journal", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("format", "text")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}
