// Package config loads the support assistant configuration: a YAML file
// layered over built-in defaults, then SUPPORTMESH_* environment overrides,
// then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/supportmesh/session"
	"github.com/hupe1980/supportmesh/tool/courier"
)

// ErrConfigNotFound is returned by Load when an explicit path does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Config is the root configuration.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Engine  EngineConfig  `yaml:"engine"`
	Tools   ToolsConfig   `yaml:"tools"`
	Session SessionConfig `yaml:"session"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig selects the model provider.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // openai | anthropic
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
	// APIKey is optional; the provider SDKs fall back to OPENAI_API_KEY or
	// ANTHROPIC_API_KEY.
	APIKey string `yaml:"api_key"`
}

// EngineConfig tunes the agent loop.
type EngineConfig struct {
	MaxIterations int    `yaml:"max_iterations"`
	Instructions  string `yaml:"instructions"`
}

// ToolsConfig selects and points the courier tools at their backends.
type ToolsConfig struct {
	Enabled        []string      `yaml:"enabled"`
	Timeout        time.Duration `yaml:"timeout"`
	TrackingURL    string        `yaml:"tracking_url"`
	TrackingMethod string        `yaml:"tracking_method"`
	TicketURL      string        `yaml:"ticket_url"`
	KnowledgeURL   string        `yaml:"knowledge_url"`
}

// SessionConfig selects the transcript store.
type SessionConfig struct {
	Backend    string   `yaml:"backend"` // memory | sqlite | s3
	SQLitePath string   `yaml:"sqlite_path"`
	S3         S3Config `yaml:"s3"`
}

// S3Config configures the S3 session backend.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// ServerConfig holds listen addresses.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	BackendsAddr string `yaml:"backends_addr"`
}

// LoggingConfig selects level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// DefaultInstructions is the system prompt used when none is configured.
const DefaultInstructions = `You are a customer support assistant for a courier company.
Help customers track packages, open support tickets and answer policy questions.
Use the available tools instead of guessing. When a tool fails, explain the problem
briefly and suggest what the customer can do next. Ask for missing details such as
the tracking id, email address or phone number before opening a ticket.`

// Default returns the built-in configuration. Backend URLs point at the
// local stand-in services started by `supportmesh backends`.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "openai",
			Name:        "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   1024,
		},
		Engine: EngineConfig{
			MaxIterations: 10,
			Instructions:  DefaultInstructions,
		},
		Tools: ToolsConfig{
			Enabled:        courier.Names(),
			Timeout:        courier.DefaultTimeout,
			TrackingURL:    "http://localhost:8081/track",
			TrackingMethod: "GET",
			TicketURL:      "http://localhost:8081/ticket",
			KnowledgeURL:   "http://localhost:8081/knowledge",
		},
		Session: SessionConfig{
			Backend:    "memory",
			SQLitePath: "supportmesh.db",
			S3: S3Config{
				Prefix: "sessions",
				Region: "us-east-1",
			},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			BackendsAddr: ":8081",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (optional) over Default, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg. Keys absent from data keep their
// current values.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Toolset converts the tools section for courier.NewToolset.
func (c ToolsConfig) Toolset() courier.ToolsetConfig {
	return courier.ToolsetConfig{
		Enabled:        c.Enabled,
		TrackingURL:    c.TrackingURL,
		TrackingMethod: strings.ToUpper(c.TrackingMethod),
		TicketURL:      c.TicketURL,
		KnowledgeURL:   c.KnowledgeURL,
	}
}

// StoreConfig converts the s3 section for session.NewS3Store.
func (c S3Config) StoreConfig() session.S3StoreConfig {
	return session.S3StoreConfig{
		Bucket:          c.Bucket,
		Region:          c.Region,
		Endpoint:        c.Endpoint,
		Prefix:          c.Prefix,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		UsePathStyle:    c.UsePathStyle,
	}
}
