package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port             int    `yaml:"port" mapstructure:"port"`
	DataFile         string `yaml:"data_file" mapstructure:"data_file"`
	DocsDir          string `yaml:"docs_dir" mapstructure:"docs_dir"`
	StaticDir        string `yaml:"static_dir" mapstructure:"static_dir"`
	FlushIntervalSec int    `yaml:"flush_interval_sec" mapstructure:"flush_interval_sec"`

	DeepSeek DeepSeekConfig `yaml:"deepseek" mapstructure:"deepseek"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
}

type DeepSeekConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	TimeoutSec  int     `yaml:"timeout_sec" mapstructure:"timeout_sec"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

type GeocodeConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	MaxCalls int    `yaml:"max_calls" mapstructure:"max_calls"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func DefaultConfig() *Config {
	return &Config{
		Port:             8001,
		DataFile:         filepath.Join("data", "people.json"),
		DocsDir:          "docs",
		StaticDir:        "web",
		FlushIntervalSec: 30,
		DeepSeek: DeepSeekConfig{
			BaseURL:     "https://api.deepseek.com/v1",
			APIKey:      "$DEEPSEEK_API_KEY",
			Model:       "deepseek-chat",
			TimeoutSec:  30,
			MaxRetries:  3,
			Temperature: 0.2,
		},
		Geocode: GeocodeConfig{
			Enabled:  true,
			MaxCalls: 10,
			BaseURL:  "https://nominatim.openstreetmap.org",
		},
	}
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths
	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "lifeline"))
	}
	home, _ := os.UserHomeDir()
	viper.AddConfigPath(filepath.Join(home, ".config", "lifeline"))

	// Environment variables: LIFELINE_PORT, LIFELINE_DEEPSEEK_API_KEY, ...
	viper.SetEnvPrefix("LIFELINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error produced
			return nil, err
		}
		// Config file not found; ignore and use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Manual expansion for keys in the config file, then the bare
	// environment variable the original deployment used.
	cfg.DeepSeek.APIKey = strings.TrimSpace(expandEnv(cfg.DeepSeek.APIKey))
	if cfg.DeepSeek.APIKey == "" || strings.HasPrefix(cfg.DeepSeek.APIKey, "$") {
		cfg.DeepSeek.APIKey = strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY"))
	}
	cfg.DeepSeek.BaseURL = expandEnv(cfg.DeepSeek.BaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.DataFile == "" {
		return fmt.Errorf("config: data_file is required")
	}
	if c.FlushIntervalSec < 1 {
		c.FlushIntervalSec = 30
	}
	if c.DeepSeek.BaseURL == "" {
		return fmt.Errorf("config: deepseek.base_url is required")
	}
	if c.DeepSeek.Model == "" {
		return fmt.Errorf("config: deepseek.model is required")
	}
	if c.DeepSeek.TimeoutSec < 1 {
		c.DeepSeek.TimeoutSec = 30
	}
	if c.DeepSeek.MaxRetries < 0 {
		c.DeepSeek.MaxRetries = 0
	}
	if c.Geocode.MaxCalls < 0 {
		return fmt.Errorf("config: geocode.max_calls must not be negative")
	}
	if c.Geocode.Enabled && c.Geocode.BaseURL == "" {
		return fmt.Errorf("config: geocode.base_url is required when geocoding is enabled")
	}
	return nil
}
