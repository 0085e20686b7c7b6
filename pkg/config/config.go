package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/safecomms/safecomms-go/pkg/safecomms"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Client  ClientConfig  `mapstructure:"client"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Profiles are named option presets for moderate-text, decoded on demand.
	Profiles map[string]map[string]interface{} `mapstructure:"profiles"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type ClientConfig struct {
	// Transport selects the HTTP client: "nethttp" (default) or "fasthttp".
	Transport      string `mapstructure:"transport"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

type BreakerConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxFailures    uint32 `mapstructure:"max_failures"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var globalConfig Config

func Load(configPath string) error {
	viper.Reset()
	viper.SetConfigName("safecomms")
	viper.SetConfigType("yaml")
	if configPath != "" {
		viper.AddConfigPath(configPath)
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("SAFECOMMS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No file is fine, environment variables still apply.
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaultValues()

	return nil
}

func setDefaultValues() {
	if globalConfig.Client.Transport == "" {
		globalConfig.Client.Transport = "nethttp"
	}
	if globalConfig.Client.TimeoutSeconds == 0 {
		globalConfig.Client.TimeoutSeconds = 30
	}
	if globalConfig.Breaker.TimeoutSeconds == 0 {
		globalConfig.Breaker.TimeoutSeconds = 30
	}
	if globalConfig.Breaker.MaxFailures == 0 {
		globalConfig.Breaker.MaxFailures = 5
	}
}

func GetConfig() *Config {
	return &globalConfig
}

// ModerationProfile decodes a named option preset into ModerationOptions.
func (c *Config) ModerationProfile(name string) (*safecomms.ModerationOptions, error) {
	raw, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	var opts safecomms.ModerationOptions
	if err := mapstructure.Decode(raw, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode profile %q: %w", name, err)
	}
	return &opts, nil
}
