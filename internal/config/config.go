package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the log analyzer services.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Elastic  ElasticConfig
	AI       AIConfig
	Webhook  WebhookConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type ElasticConfig struct {
	BaseURL        string
	IndexPattern   string
	Username       string
	Password       string
	Timeout        time.Duration
	ImportWindow   time.Duration
	ImportInterval time.Duration
	ImportLimit    int
}

type AIConfig struct {
	Provider          string
	CompletionTimeout time.Duration
	OpenAI            OpenAIConfig
	Ollama            OllamaConfig
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

var validProviders = map[string]bool{
	"openai": true,
	"ollama": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("LOGANALYZER_PORT", 8080),
			Env:  envString("LOGANALYZER_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Elastic: ElasticConfig{
			BaseURL:        os.Getenv("ELASTIC_BASE_URL"),
			IndexPattern:   envString("ELASTIC_INDEX_PATTERN", "logs-*"),
			Username:       os.Getenv("ELASTIC_USERNAME"),
			Password:       os.Getenv("ELASTIC_PASSWORD"),
			Timeout:        envDuration("ELASTIC_TIMEOUT", 30*time.Second),
			ImportWindow:   envDuration("ELASTIC_IMPORT_WINDOW", 5*time.Minute),
			ImportInterval: envDuration("ELASTIC_IMPORT_INTERVAL", 5*time.Minute),
			ImportLimit:    envInt("ELASTIC_IMPORT_LIMIT", 100),
		},
		AI: AIConfig{
			Provider:          os.Getenv("AI_PROVIDER"),
			CompletionTimeout: envDurationSecs("AI_COMPLETION_TIMEOUT_SECS", 60*time.Second),
			OpenAI: OpenAIConfig{
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com"),
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4-turbo-preview"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
		},
		Webhook: WebhookConfig{
			URL:     os.Getenv("WEBHOOK_URL"),
			Timeout: envDurationSecs("WEBHOOK_TIMEOUT_SECS", 30*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Elastic.BaseURL == "" {
		return fmt.Errorf("ELASTIC_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Elastic.BaseURL, "http://") && !strings.HasPrefix(c.Elastic.BaseURL, "https://") {
		return fmt.Errorf("ELASTIC_BASE_URL must start with http:// or https://, got %q", c.Elastic.BaseURL)
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, ollama, mock; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.CompletionTimeout <= 0 {
		return fmt.Errorf("AI_COMPLETION_TIMEOUT_SECS must be positive")
	}

	if c.Webhook.URL == "" {
		return fmt.Errorf("WEBHOOK_URL is required")
	}
	if !strings.HasPrefix(c.Webhook.URL, "http://") && !strings.HasPrefix(c.Webhook.URL, "https://") {
		return fmt.Errorf("WEBHOOK_URL must start with http:// or https://, got %q", c.Webhook.URL)
	}
	if c.Webhook.Timeout <= 0 {
		return fmt.Errorf("WEBHOOK_TIMEOUT_SECS must be positive")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
