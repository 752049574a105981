package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".webcanvas"
	DefaultConfigFile = "config.yaml"
)

// Config represents the application configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Preview PreviewConfig `yaml:"preview"`
	Context ContextConfig `yaml:"context"`
}

// APIConfig configures the remote model endpoint
type APIConfig struct {
	Key         string  `yaml:"key"`
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// PreviewConfig configures the local preview server
type PreviewConfig struct {
	// Addr is the listen address for the browser preview, e.g. "127.0.0.1:8724"
	Addr string `yaml:"addr"`
}

// ContextConfig configures prompt composition
type ContextConfig struct {
	// HistoryWindow: number of recent messages included as conversation context
	HistoryWindow int `yaml:"history_window"`

	// MunicipalDataURL: side dataset fetched when municipal keywords appear in the prompt
	MunicipalDataURL string `yaml:"municipal_data_url"`
}

func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Key:         os.Getenv("DEEPSEEK_API_KEY"),
			Endpoint:    "https://api.deepseek.com/v1",
			Model:       "deepseek-coder",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Preview: PreviewConfig{
			Addr: "127.0.0.1:8724",
		},
		Context: ContextConfig{
			HistoryWindow:    5,
			MunicipalDataURL: "https://script.google.com/macros/s/AKfycbwxRkDjDHn5CWvmQH7rNhLy5dA-AbRVGw73VUqdKFT2BKhVNYYKcG7CuE-ZrY-ORlyb/exec",
		},
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)
	return filepath.Join(configDir, DefaultConfigFile), nil
}

// DataDir returns the application data directory, creating it if needed
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dir, nil
}

// Load loads the configuration from file, creating default if not exists
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create default
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			// If save fails, just return default config without error
			// This ensures the app works even if we can't write config
			return cfg, nil
		}
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Env var always wins over a key committed to disk
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		cfg.API.Key = key
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if _, err := DataDir(); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.API.Endpoint == "" {
		return fmt.Errorf("api.endpoint must not be empty")
	}

	if c.API.Model == "" {
		return fmt.Errorf("api.model must not be empty")
	}

	if c.API.Temperature < 0.0 || c.API.Temperature > 2.0 {
		return fmt.Errorf("api.temperature must be between 0.0 and 2.0, got %f", c.API.Temperature)
	}

	if c.API.MaxTokens <= 0 {
		return fmt.Errorf("api.max_tokens must be positive, got %d", c.API.MaxTokens)
	}

	if c.Preview.Addr == "" {
		return fmt.Errorf("preview.addr must not be empty")
	}

	if c.Context.HistoryWindow <= 0 {
		return fmt.Errorf("context.history_window must be positive, got %d", c.Context.HistoryWindow)
	}

	return nil
}
