package llm

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultGeminiName  = "Google Gemini"
)

// GeminiClient implements Backend for Google's Gemini API on top of a genai
// chat, so every Ask is a new turn in the same conversation.
type GeminiClient struct {
	name string

	mu   sync.Mutex
	chat *genai.Chat
}

// NewGeminiClient creates a Gemini backend. The key must be passed in; the
// caller resolves it from GOOGLE_API_KEY.
func NewGeminiClient(ctx context.Context, cfg ProviderConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w (set GOOGLE_API_KEY)", ErrMissingAPIKey)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	name := cfg.Name
	if name == "" {
		name = defaultGeminiName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	config := &genai.GenerateContentConfig{}
	if cfg.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(cfg.SystemPrompt, genai.RoleUser)
	}
	chat, err := client.Chats.Create(ctx, model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: create chat: %w", err)
	}
	return &GeminiClient{name: name, chat: chat}, nil
}

func (c *GeminiClient) Name() string { return c.name }

// Ask sends prompt as the next chat turn. The chat records the turn only
// when the model answers.
func (c *GeminiClient) Ask(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", newProviderError(c.name, err)
	}
	if len(resp.Candidates) == 0 {
		return "", newProviderError(c.name, fmt.Errorf("no candidates in response"))
	}
	text := resp.Text()
	if text == "" {
		return "", newProviderError(c.name, fmt.Errorf("empty content (finish reason %q)", resp.Candidates[0].FinishReason))
	}
	return text, nil
}
