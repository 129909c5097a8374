package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Engine providers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderLambda      = "lambda"
)

// Config holds the grammar corrector configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     string   `yaml:"read_timeout"`
	WriteTimeout    string   `yaml:"write_timeout"`
	IdleTimeout     string   `yaml:"idle_timeout"`
	RequestTimeout  string   `yaml:"request_timeout"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// EngineConfig configures the text-generation backend.
type EngineConfig struct {
	Provider string `yaml:"provider"` // huggingface, gemini, openai, anthropic, lambda
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	// FunctionName is the model-hosting Lambda for the lambda provider.
	FunctionName string `yaml:"function_name"`
	Timeout      string `yaml:"timeout"`
	// MaxConcurrent bounds in-flight generations; 0 means unbounded.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "90s",
			IdleTimeout:     "60s",
			RequestTimeout:  "60s",
			ShutdownTimeout: "5s",
			AllowedOrigins:  []string{"http://localhost:3000"},
		},
		Engine: EngineConfig{
			Provider: ProviderHuggingFace,
			Timeout:  "60s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variables on top of the file.
// Malformed numeric or boolean values are reported, not skipped.
func (c *Config) applyEnvOverrides() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	if provider := os.Getenv("ENGINE_PROVIDER"); provider != "" {
		c.Engine.Provider = strings.ToLower(provider)
	}
	if model := os.Getenv("ENGINE_MODEL"); model != "" {
		c.Engine.Model = model
	}
	if url := os.Getenv("ENGINE_BASE_URL"); url != "" {
		c.Engine.BaseURL = url
	}
	if name := os.Getenv("ENGINE_FUNCTION_NAME"); name != "" {
		c.Engine.FunctionName = name
	}
	if timeout := os.Getenv("ENGINE_TIMEOUT"); timeout != "" {
		c.Engine.Timeout = timeout
	}
	if limit := os.Getenv("ENGINE_MAX_CONCURRENT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return fmt.Errorf("invalid ENGINE_MAX_CONCURRENT %q: %w", limit, err)
		}
		c.Engine.MaxConcurrent = n
	}

	// Provider keys only apply to their own provider
	keys := map[string]string{
		ProviderHuggingFace: "HF_API_TOKEN",
		ProviderGemini:      "GOOGLE_API_KEY",
		ProviderOpenAI:      "OPENAI_API_KEY",
		ProviderAnthropic:   "ANTHROPIC_API_KEY",
	}
	if env, ok := keys[c.Engine.Provider]; ok {
		if key := os.Getenv(env); key != "" {
			c.Engine.APIKey = key
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if dev := os.Getenv("LOG_DEVELOPMENT"); dev != "" {
		development, err := strconv.ParseBool(dev)
		if err != nil {
			return fmt.Errorf("invalid LOG_DEVELOPMENT %q: %w", dev, err)
		}
		c.Logging.Development = development
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Engine.Provider {
	case ProviderHuggingFace, ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	case ProviderLambda:
		if c.Engine.FunctionName == "" {
			return fmt.Errorf("engine.function_name is required for the %s provider", ProviderLambda)
		}
	default:
		return fmt.Errorf("unknown engine provider %q", c.Engine.Provider)
	}

	if c.Engine.MaxConcurrent < 0 {
		return fmt.Errorf("engine.max_concurrent must not be negative")
	}

	durations := map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.idle_timeout":     c.Server.IdleTimeout,
		"server.request_timeout":  c.Server.RequestTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"engine.timeout":          c.Engine.Timeout,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	return nil
}

// GetTimeout returns the per-generation timeout, 0 when unset.
func (c EngineConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 0)
}

func (c ServerConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 15*time.Second)
}

func (c ServerConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 90*time.Second)
}

func (c ServerConfig) GetIdleTimeout() time.Duration {
	return parseDuration(c.IdleTimeout, 60*time.Second)
}

func (c ServerConfig) GetRequestTimeout() time.Duration {
	return parseDuration(c.RequestTimeout, 60*time.Second)
}

func (c ServerConfig) GetShutdownTimeout() time.Duration {
	return parseDuration(c.ShutdownTimeout, 5*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
