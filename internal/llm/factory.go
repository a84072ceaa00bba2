package llm

import (
	"context"
	"fmt"
)

// ProviderConfig holds what's needed to construct a Backend.
type ProviderConfig struct {
	Provider     string // "anthropic", "openai", "gemini", "ollama"
	Model        string
	Name         string // display label; provider default when empty
	SystemPrompt string
	APIKey       string
	BaseURL      string // optional: override API base URL
}

// NewFromConfig creates the Backend for cfg.Provider.
func NewFromConfig(ctx context.Context, cfg ProviderConfig) (Backend, error) {
	switch cfg.Provider {
	case "anthropic", "claude":
		c, err := NewAnthropicClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil

	case "openai", "chatgpt":
		c, err := NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil

	case "gemini", "google":
		c, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil

	case "ollama":
		return NewOllamaClient(cfg), nil

	case "":
		return nil, fmt.Errorf("no LLM provider configured")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: anthropic, openai, gemini, ollama)", cfg.Provider)
	}
}
