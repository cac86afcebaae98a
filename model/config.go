package model

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// IntegrationConfig describes one source code integration
type IntegrationConfig struct {
	Type    string `yaml:"type" json:"type"`
	Host    string `yaml:"host" json:"host"`
	BaseURL string `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty"`
}

// Config represents the orchestrator configuration
type Config struct {
	LogLevel     string              `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
	Processors   []string            `yaml:"processors" json:"processors"`
	Policies     []string            `yaml:"policies,omitempty" json:"policies,omitempty"`
	Integrations []IntegrationConfig `yaml:"integrations,omitempty" json:"integrations,omitempty"`
}

// DefaultConfig returns a configuration running the built-in processors
func DefaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Processors: []string{"annotate-location", "builtin-kinds"},
		Policies:   []string{"required-fields", "field-format"},
		Integrations: []IntegrationConfig{
			{Type: "github", Host: "github.com"},
			{Type: "gitlab", Host: "gitlab.com"},
		},
	}
}

// ParseConfig decodes a YAML configuration payload
func ParseConfig(data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("config: payload is empty")
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if _, err := config.Level(); err != nil {
		return nil, err
	}
	for _, integration := range config.Integrations {
		if strings.TrimSpace(integration.Host) == "" {
			return nil, fmt.Errorf("config: integration of type %q has no host", integration.Type)
		}
	}

	return config, nil
}

// LoadConfig reads and decodes a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return config, nil
}

// Level maps LogLevel to a slog level, defaulting to info
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
}
