package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel = "claude-3-5-sonnet-latest"
	defaultAnthropicName  = "Claude Sonnet"
)

// AnthropicClient wraps the Anthropic SDK. It keeps the conversation so
// every Ask is a new turn in the same chat.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	name   string
	system string

	mu      sync.Mutex
	history []anthropic.MessageParam
}

// NewAnthropicClient creates a Claude backend. With an empty APIKey it falls
// back to ANTHROPIC_API_KEY and fails when neither is set.
func NewAnthropicClient(cfg ProviderConfig) (*AnthropicClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w (set ANTHROPIC_API_KEY)", ErrMissingAPIKey)
	}
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithAPIKey(apiKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	name := cfg.Name
	if name == "" {
		name = defaultAnthropicName
	}
	c := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client: &c,
		model:  model,
		name:   name,
		system: cfg.SystemPrompt,
	}, nil
}

func (c *AnthropicClient) Name() string { return c.name }

// Ask sends prompt after the earlier turns. A failed call leaves the
// conversation unchanged.
func (c *AnthropicClient) Ask(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user := anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))
	messages := make([]anthropic.MessageParam, 0, len(c.history)+1)
	messages = append(messages, c.history...)
	messages = append(messages, user)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		Messages:  messages,
	}
	if c.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", newProviderError(c.name, err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", newProviderError(c.name, fmt.Errorf("no text content in response (stop reason %q)", resp.StopReason))
	}

	reply := out.String()
	c.history = append(c.history, user, anthropic.NewAssistantMessage(anthropic.NewTextBlock(reply)))
	return reply, nil
}
