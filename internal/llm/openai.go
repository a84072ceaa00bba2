package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultOpenAIModel = "gpt-4o"
	defaultOpenAIName  = "ChatGPT"

	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
	defaultOllamaName  = "Ollama"
)

// OpenAIClient implements Backend for OpenAI-compatible chat completion APIs.
// It serves both ChatGPT and a local Ollama server, and keeps the
// conversation so every Ask is a new turn in the same chat.
type OpenAIClient struct {
	client openai.Client
	model  string
	name   string
	system string

	mu      sync.Mutex
	history []openai.ChatCompletionMessageParamUnion
}

// NewOpenAIClient creates a ChatGPT backend. With an empty APIKey it falls
// back to OPENAI_API_KEY and fails when neither is set.
func NewOpenAIClient(cfg ProviderConfig) (*OpenAIClient, error) {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.Name == "" {
		cfg.Name = defaultOpenAIName
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY)", ErrMissingAPIKey)
	}
	return newOpenAICompatible(cfg), nil
}

// NewOllamaClient creates a backend for a local Ollama server through its
// OpenAI-compatible endpoint. BaseURL falls back to OLLAMA_HOST, then to
// http://localhost:11434.
func NewOllamaClient(cfg ProviderConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}
	if cfg.Name == "" {
		cfg.Name = defaultOllamaName
	}
	cfg.BaseURL = ollamaBaseURL(cfg.BaseURL)
	if cfg.APIKey == "" {
		// Ollama ignores the key, but the SDK always sends one.
		cfg.APIKey = "ollama"
	}
	return newOpenAICompatible(cfg)
}

func newOpenAICompatible(cfg ProviderConfig) *OpenAIClient {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		name:   cfg.Name,
		system: cfg.SystemPrompt,
	}
}

// ollamaBaseURL normalises an Ollama host into the /v1 API root.
func ollamaBaseURL(base string) string {
	if base == "" {
		base = os.Getenv("OLLAMA_HOST")
	}
	if base == "" {
		base = defaultOllamaHost
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, "/v1/chat/completions")
	base = strings.TrimSuffix(base, "/v1")
	return base + "/v1"
}

func (c *OpenAIClient) Name() string { return c.name }

// Ask sends prompt after the earlier turns. A failed call leaves the
// conversation unchanged.
func (c *OpenAIClient) Ask(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user := openai.UserMessage(prompt)
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(c.history)+2)
	if c.system != "" {
		messages = append(messages, openai.SystemMessage(c.system))
	}
	messages = append(messages, c.history...)
	messages = append(messages, user)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", newProviderError(c.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", newProviderError(c.name, fmt.Errorf("no choices in response"))
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", newProviderError(c.name, fmt.Errorf("empty content (finish reason %q)", resp.Choices[0].FinishReason))
	}
	c.history = append(c.history, user, openai.AssistantMessage(content))
	return content, nil
}
