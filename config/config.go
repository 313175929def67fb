// Package config loads application settings from an optional YAML file, a
// local .env file and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in Config.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config holds the runtime settings for an agent process.
type Config struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	EmbeddingModel  string `yaml:"embedding_model"`
	DatabasePath    string `yaml:"database_path"`
	SystemPrompt    string `yaml:"system_prompt"`
	HistoryWindow   int    `yaml:"history_window"`
	MaxIterations   int    `yaml:"max_iterations"`
	MemoryTopK      int    `yaml:"memory_top_k"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Provider:      ProviderOpenAI,
		DatabasePath:  "mindkeep.db",
		HistoryWindow: 20,
		MaxIterations: 10,
		MemoryTopK:    5,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load builds a Config from defaults, an optional YAML file at path (an
// empty path or a missing file is not an error), a .env file in the working
// directory and finally environment variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Populate the environment from .env if present; real environment
	// variables keep precedence since godotenv never overwrites.
	_ = godotenv.Load()

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Provider, "MINDKEEP_PROVIDER")
	setString(&c.Model, "MINDKEEP_MODEL")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.EmbeddingModel, "MINDKEEP_EMBEDDING_MODEL")
	setString(&c.DatabasePath, "MINDKEEP_DB_PATH")
	setString(&c.SystemPrompt, "MINDKEEP_SYSTEM_PROMPT")
	setString(&c.LogLevel, "MINDKEEP_LOG_LEVEL")
	setString(&c.LogFormat, "MINDKEEP_LOG_FORMAT")
	setInt(&c.HistoryWindow, "MINDKEEP_HISTORY_WINDOW")
	setInt(&c.MaxIterations, "MINDKEEP_MAX_ITERATIONS")
	setInt(&c.MemoryTopK, "MINDKEEP_MEMORY_TOP_K")
}

// Validate checks settings that would otherwise fail deep inside the loop.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("history_window must be positive, got %d", c.HistoryWindow)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.MemoryTopK <= 0 {
		return fmt.Errorf("memory_top_k must be positive, got %d", c.MemoryTopK)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
