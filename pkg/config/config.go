// Package config loads the YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Log         LogConfig         `yaml:"log"`
	Output      OutputConfig      `yaml:"output"`
	Server      ServerConfig      `yaml:"server"`
}

// LLMConfig points at an OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// SearchConfig selects and configures the evidence search provider.
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig configures the Tavily search client.
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig configures a self-hosted SearXNG instance.
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// AnalysisConfig controls which due-diligence domains run. An empty list
// means every canonical domain.
type AnalysisConfig struct {
	Domains []string `yaml:"domains"`
	// EvidenceResults caps the search hits fed into each analyst.
	EvidenceResults int `yaml:"evidence_results"`
}

// ConcurrencyConfig throttles outbound LLM calls.
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LogConfig controls logging level and optional file output.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// OutputConfig locates the flat-file run store.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig configures the report browsing server.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = "reports"
	}
	if c.Concurrency.RPM == 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.QPS == 0 {
		c.Concurrency.QPS = 1
	}
	if c.Analysis.EvidenceResults == 0 {
		c.Analysis.EvidenceResults = 6
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// Validate checks the fields every run needs.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config error: llm.api_key is not set")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("config error: llm.model is not set")
	}
	return nil
}
