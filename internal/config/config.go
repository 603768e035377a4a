package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"brandradar/pkg/score"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Checks   ChecksConfig   `yaml:"checks"`
	Weights  score.Weights  `yaml:"weights"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// ChecksConfig holds per-source settings.
type ChecksConfig struct {
	Wikipedia WikipediaConfig `yaml:"wikipedia"`
	LLM       LLMConfig       `yaml:"llm"`
	WebSearch WebSearchConfig `yaml:"websearch"`
}

// WikipediaConfig for the Wikipedia checker.
type WikipediaConfig struct {
	Language string `yaml:"language"`
}

// LLMConfig for the brand-recall checker.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "anthropic"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"` // custom endpoint (optional)
}

// WebSearchConfig for the Google Custom Search checker.
type WebSearchConfig struct {
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./brandradar.db"},
		Server:   ServerConfig{Port: 8080},
		Checks: ChecksConfig{
			Wikipedia: WikipediaConfig{Language: "en"},
			LLM:       LLMConfig{Provider: "openai"},
		},
		Weights: score.DefaultWeights(),
	}
}

// Load reads configuration from a YAML file, applies env var overrides and
// validates the weight set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BRANDRADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Checks.LLM.APIKey = v
		cfg.Checks.LLM.Provider = "openai"
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Checks.LLM.APIKey = v
		cfg.Checks.LLM.Provider = "anthropic"
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Checks.WebSearch.APIKey = v
	}
	if v := os.Getenv("GOOGLE_CSE_ID"); v != "" {
		cfg.Checks.WebSearch.EngineID = v
	}
}
