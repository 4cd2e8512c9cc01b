// Package config handles configuration loading for MarketDesk.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"     yaml:"llm"     json:"llm"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"     json:"api"`
	Data    DataConfig    `mapstructure:"data"    yaml:"data"    json:"data"`
	Audit   AuditConfig   `mapstructure:"audit"   yaml:"audit"   json:"audit"`
	Regime  RegimeConfig  `mapstructure:"regime"  yaml:"regime"  json:"regime"`
	Feeds   FeedsConfig   `mapstructure:"feeds"   yaml:"feeds"   json:"feeds"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// LLMConfig holds the text-generation backend configuration.
type LLMConfig struct {
	Mode        string  `mapstructure:"mode"        yaml:"mode"        json:"mode"` // "auto", "live" or "mock"
	OpenAIKey   string  `mapstructure:"openai_key"  yaml:"openai_key"  json:"-"`
	BaseURL     string  `mapstructure:"base_url"    yaml:"base_url"    json:"base_url"`
	Model       string  `mapstructure:"model"       yaml:"model"       json:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"  json:"max_tokens"`
	TimeoutSec  int     `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// DataConfig locates the bundled sample data.
type DataConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

// AuditConfig sizes the in-memory audit log.
type AuditConfig struct {
	Capacity     int `mapstructure:"capacity"      yaml:"capacity"      json:"capacity"`
	StreamBuffer int `mapstructure:"stream_buffer" yaml:"stream_buffer" json:"stream_buffer"`
}

// RegimeConfig holds regime detection settings.
type RegimeConfig struct {
	Significance string `mapstructure:"significance" yaml:"significance" json:"significance"` // "deterministic" or "random"
}

// FeedsConfig lists regulatory notice feeds.
type FeedsConfig struct {
	Regulatory []string `mapstructure:"regulatory" yaml:"regulatory" json:"regulatory"`
	TimeoutSec int      `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "console" or "json"
}

// LiveAvailable reports whether a live text-generation backend is
// configured. Mode "mock" disables it even when a key is present.
func (c *Config) LiveAvailable() bool {
	return c.LLM.OpenAIKey != "" && c.LLM.Mode != "mock"
}

// activePath records the file the running config was read from.
var activePath string

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.marketdesk/config.yaml (home directory)
//  3. /etc/marketdesk/config.yaml (system)
//
// Environment variables override config file values.
// Format: MARKETDESK_<SECTION>_<KEY>, e.g., MARKETDESK_LLM_OPENAI_KEY
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".marketdesk"))
	v.AddConfigPath("/etc/marketdesk")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	activePath = v.ConfigFileUsed()

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	activePath = path

	return unmarshal(v)
}

// Default returns the configuration built from defaults alone.
func Default() *Config {
	cfg, _ := unmarshal(newViper())
	return cfg
}

// ConfigFilePath returns the file the running config came from, or the
// default project location when none was read.
func ConfigFilePath() string {
	if activePath != "" {
		return activePath
	}
	return filepath.Join("config", "config.yaml")
}

// SaveToFile writes cfg as YAML to path, creating parent directories.
// Secrets are written as-is; keep config files out of version control.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MARKETDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.mode", "auto")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout_sec", 60)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("data.dir", "data")

	// Audit defaults
	v.SetDefault("audit.capacity", 1000)
	v.SetDefault("audit.stream_buffer", 64)

	v.SetDefault("regime.significance", "deterministic")

	v.SetDefault("feeds.regulatory", []string{})
	v.SetDefault("feeds.timeout_sec", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// OPENAI_API_KEY is honoured as a fallback so existing deployments work.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("MARKETDESK_LLM_OPENAI_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.LLM.OpenAIKey == "" {
		cfg.LLM.OpenAIKey = key
	}
	if model := os.Getenv("GPT_MODEL"); model != "" && os.Getenv("MARKETDESK_LLM_MODEL") == "" {
		cfg.LLM.Model = model
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
