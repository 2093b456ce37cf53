package ai

import (
	"fmt"

	"github.com/bytefusion/loganalyzer/internal/ai/mock"
	"github.com/bytefusion/loganalyzer/internal/ai/ollama"
	"github.com/bytefusion/loganalyzer/internal/ai/openai"
	"github.com/bytefusion/loganalyzer/internal/config"
	"github.com/bytefusion/loganalyzer/pkg/models"
)

// NewProvider constructs the appropriate completion provider based on config.
// Called once at startup.
func NewProvider(cfg config.AIConfig) (models.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, ollama, mock", cfg.Provider)
	}
}
