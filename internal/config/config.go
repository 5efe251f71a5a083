package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend invocation strategies
const (
	ModePoll = "poll"
	ModeWait = "wait"
)

// Config represents the full proxy configuration, loaded once at startup
// and treated as read-only afterwards
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Models  ModelsConfig  `yaml:"models"`
}

// ServerConfig contains listener and authentication settings
type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// BackendConfig contains settings for the prediction backend
type BackendConfig struct {
	APIBase             string `yaml:"api_base"`
	APIToken            string `yaml:"api_token"`
	Mode                string `yaml:"mode"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	MaxPolls            int    `yaml:"max_polls"`
}

// ModelsConfig contains the model mapping and version tables
type ModelsConfig struct {
	DefaultModel string                 `yaml:"default_model"`
	Mappings     map[string]string      `yaml:"mappings"`
	Versions     map[string]string      `yaml:"versions"`
	ModelConfigs map[string]ModelConfig `yaml:"model_configs"`
}

// ModelConfig carries descriptive metadata for an inbound model. It is
// echoed by the model listing endpoint and enforced nowhere.
type ModelConfig struct {
	MaxTokens         int       `yaml:"max_tokens"`
	TemperatureRange  []float64 `yaml:"temperature_range"`
	SupportsStreaming bool      `yaml:"supports_streaming"`
}

// LoadConfig loads configuration from a YAML file and applies defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Backend.Mode == "" {
		c.Backend.Mode = ModePoll
	}
	if c.Backend.PollIntervalSeconds == 0 {
		c.Backend.PollIntervalSeconds = 1
	}
}
