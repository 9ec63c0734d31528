// Package config loads the quer API configuration from YAML files with
// environment variable expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the quer API configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	Parks        ParksConfig        `yaml:"parks"`
	Conversation ConversationConfig `yaml:"conversation"`
	Persona      PersonaConfig      `yaml:"persona"`
	Features     FeaturesConfig     `yaml:"features"`
	RateLimit    RateLimitConfig    `yaml:"ratelimit"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// OpenAIConfig holds credentials and model identifiers for the OpenAI-compatible
// embedding, chat, and transcription services.
type OpenAIConfig struct {
	APIKey             string  `yaml:"api_key"`
	BaseURL            string  `yaml:"base_url"` // empty = api.openai.com
	EmbeddingModel     string  `yaml:"embedding_model"`
	ChatModel          string  `yaml:"chat_model"`
	TranscriptionModel string  `yaml:"transcription_model"`
	Temperature        float32 `yaml:"temperature"`
	RequestTimeoutSec  int     `yaml:"request_timeout_sec"`
}

// ParksConfig holds the park listing endpoint and selection settings.
type ParksConfig struct {
	ServiceURL string `yaml:"service_url"`
	TopK       int    `yaml:"top_k"`
}

// ConversationConfig holds the conversation token budget.
type ConversationConfig struct {
	MaxTokens int `yaml:"max_tokens"`
}

// PersonaConfig holds the assistant persona injected into every system message.
type PersonaConfig struct {
	Label       string   `yaml:"label"`       // prefix on every answer
	Description string   `yaml:"description"` // persona block of the system context
	Context     []string `yaml:"context"`     // extra platform facts, comma-joined into the description
	Language    string   `yaml:"language"`    // ISO code for preprocessing and transcription
}

// FeaturesConfig toggles endpoint variants.
type FeaturesConfig struct {
	EchoParks bool `yaml:"echo_parks"` // include matched park payloads in responses
	Audio     bool `yaml:"audio"`      // accept base64 PCM16 audio in place of text
}

// RateLimitConfig holds the shared outbound call quota.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"`
	WindowSec int `yaml:"window_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-ada-002"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-3.5-turbo"
	}
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = "whisper-1"
	}
	if c.OpenAI.Temperature <= 0 {
		c.OpenAI.Temperature = 0.7
	}
	if c.OpenAI.RequestTimeoutSec <= 0 {
		c.OpenAI.RequestTimeoutSec = 30
	}
	if c.Parks.TopK <= 0 {
		c.Parks.TopK = 5
	}
	if c.Conversation.MaxTokens <= 0 {
		c.Conversation.MaxTokens = 2048
	}
	if c.Persona.Label == "" {
		c.Persona.Label = "QUER AI"
	}
	if c.Persona.Language == "" {
		c.Persona.Language = "es"
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 60
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Parks.ServiceURL == "" {
		return fmt.Errorf("parks.service_url is required")
	}
	if c.Persona.Description == "" {
		return fmt.Errorf("persona.description is required")
	}
	return nil
}

// SystemContext assembles the persona block injected into every system message.
// Context fragments left empty by env expansion are skipped.
func (c *PersonaConfig) SystemContext() string {
	fragments := make([]string, 0, len(c.Context))
	for _, f := range c.Context {
		if strings.TrimSpace(f) != "" {
			fragments = append(fragments, f)
		}
	}
	if len(fragments) == 0 {
		return c.Description
	}
	return c.Description + " " + strings.Join(fragments, ", ")
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
