// Package config loads the application configuration from a YAML file with
// environment-variable fallbacks for secrets and paths.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Cloud backend
	GroqAPIKey string `yaml:"groq_api_key"`
	// CloudProvider selects the cloud vendor: groq or bedrock
	CloudProvider string `yaml:"cloud_provider"`
	CloudModel    string `yaml:"cloud_model"`
	AWSRegion     string `yaml:"aws_region"`

	// Local backend
	LocalModelPath  string `yaml:"local_model_path"`
	LocalRuntimeURL string `yaml:"local_runtime_url"`
	PreferredDevice string `yaml:"preferred_device"` // CPU, GPU, AUTO

	// Selection and generation
	DefaultModel string `yaml:"default_model"` // local, cloud, auto
	HistoryTurns int    `yaml:"history_turns"`
	// MaxTokens caps every generation request; actions with a smaller
	// budget keep it.
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`

	// Server
	ListenAddr string `yaml:"listen_addr"`
}

// LoadConfig loads configuration from a YAML file. An empty path skips the
// file and builds the configuration from environment and defaults alone.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Load secrets and paths from environment if not in config
	if cfg.GroqAPIKey == "" {
		cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.LocalModelPath == "" {
		cfg.LocalModelPath = os.Getenv("LOCAL_MODEL_PATH")
	}
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = os.Getenv("AWS_REGION")
	}

	// Apply defaults
	if cfg.CloudProvider == "" {
		cfg.CloudProvider = "groq"
	}
	if cfg.PreferredDevice == "" {
		cfg.PreferredDevice = "CPU"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "auto"
	}
	if cfg.HistoryTurns == 0 {
		cfg.HistoryTurns = 20
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	return &cfg, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.CloudProvider {
	case "groq", "bedrock":
	default:
		return fmt.Errorf("cloud_provider must be groq or bedrock, got %q", c.CloudProvider)
	}

	switch c.DefaultModel {
	case "local", "cloud", "auto":
	default:
		return fmt.Errorf("default_model must be local, cloud, or auto, got %q", c.DefaultModel)
	}

	if c.DefaultModel == "local" && c.LocalModelPath == "" {
		return fmt.Errorf("default_model is local but local_model_path is not set")
	}
	if c.DefaultModel == "cloud" && c.CloudProvider == "groq" && c.GroqAPIKey == "" {
		return fmt.Errorf("default_model is cloud but groq_api_key is not set")
	}

	return nil
}
