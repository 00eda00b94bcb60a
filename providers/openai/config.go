package openai

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultTimeout    = 120 * time.Second
	defaultAPIVersion = "preview"
)

// Config is the YAML configuration of a Provider.
//
//	api_key: sk-...
//	base_url: https://api.openai.com/v1
//	timeout: 90s
//	store: false
//	log_level: debug
//
// For an Azure OpenAI resource set azure: true and point base_url at
// https://<resource>.openai.azure.com/openai/v1.
type Config struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Organization string        `yaml:"organization"`
	Project      string        `yaml:"project"`
	Timeout      time.Duration `yaml:"timeout"`

	// Store is the default for requests that leave RequestParams.Store unset.
	// Nil keeps the API default (true).
	Store *bool `yaml:"store"`

	// LogLevel is a logrus level name ("debug", "info", ...). Empty leaves the logger alone.
	LogLevel string `yaml:"log_level"`

	Azure      bool   `yaml:"azure"`
	APIVersion string `yaml:"api_version"`
}

// DefaultConfig returns a configuration with the public endpoint and default timeout.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: defaultBaseURL,
		Timeout: defaultTimeout,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig, then applies the
// OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_ORGANIZATION and OPENAI_PROJECT
// environment variables. An empty path uses defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("OPENAI_ORGANIZATION"); v != "" {
		c.Organization = v
	}
	if v := os.Getenv("OPENAI_PROJECT"); v != "" {
		c.Project = v
	}
}

// Validate checks the configuration. A missing API key is reported as
// llmprovider.ErrInvalidAPIKey.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: api_key is required (set OPENAI_API_KEY)", llmprovider.ErrInvalidAPIKey)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level: %w", err)
		}
	}
	return nil
}
