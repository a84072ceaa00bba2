package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/samber/lo"
)

const (
	// SharedSystemPrompt is the instruction given to every backend without its own.
	SharedSystemPrompt = "Provide code-only responses, unless you are acting as a judge."
	// ClaudeSystemPrompt is Claude's historical instruction.
	ClaudeSystemPrompt = "Respond with code only unless you are told you're a judge."
)

type Config struct {
	// SystemPrompt applies to backends that leave SystemPrompt empty.
	SystemPrompt string `json:"system_prompt" validate:"required"`

	// RequestTimeout bounds a single backend call. Zero means no limit.
	RequestTimeout Duration `json:"request_timeout" validate:"gte=0"`

	Backends []BackendConfig `json:"backends" validate:"required,min=1,dive"`
}

type BackendConfig struct {
	Key          string `json:"key" validate:"required,lowercase"`
	Provider     string `json:"provider" validate:"required,oneof=anthropic openai gemini ollama"`
	Model        string `json:"model"`
	Name         string `json:"name,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	APIKeyEnv    string `json:"api_key_env,omitempty"`
	BaseURL      string `json:"base_url,omitempty" validate:"omitempty,url"`
}

// Duration is a time.Duration that reads and writes as "30s" in JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string like \"90s\" or nanoseconds: %s", b)
	}
	*d = Duration(n)
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		SystemPrompt: SharedSystemPrompt,
		Backends: []BackendConfig{
			{
				Key:          "claude",
				Provider:     "anthropic",
				Model:        "claude-3-5-sonnet-latest",
				Name:         "Claude Sonnet",
				SystemPrompt: ClaudeSystemPrompt,
				APIKeyEnv:    "ANTHROPIC_API_KEY",
			},
			{
				Key:       "chatgpt",
				Provider:  "openai",
				Model:     "gpt-4o",
				Name:      "ChatGPT",
				APIKeyEnv: "OPENAI_API_KEY",
			},
			{
				Key:       "gemini",
				Provider:  "gemini",
				Model:     "gemini-2.0-flash",
				Name:      "Google Gemini",
				APIKeyEnv: "GOOGLE_API_KEY",
			},
			{
				Key:      "ollama",
				Provider: "ollama",
				Model:    "llama3.2",
				Name:     "Ollama",
			},
		},
	}
}

// Load reads the JSON config at path on top of the defaults. A "backends"
// list in the file replaces the default list as a whole. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	defaults := cfg.Backends
	cfg.Backends = nil
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Backends == nil {
		cfg.Backends = defaults
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// envOverrides are read with the ARENA_ prefix. Fields with an explicit
// envconfig tag also fall back to the unprefixed name (e.g. OLLAMA_HOST).
type envOverrides struct {
	SystemPrompt   string        `envconfig:"SYSTEM_PROMPT"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT"`
	ClaudeModel    string        `envconfig:"CLAUDE_MODEL"`
	ChatGPTModel   string        `envconfig:"CHATGPT_MODEL"`
	GeminiModel    string        `envconfig:"GEMINI_MODEL"`
	OllamaModel    string        `envconfig:"OLLAMA_MODEL"`
	OllamaHost     string        `envconfig:"OLLAMA_HOST"`
}

// ApplyEnv layers environment overrides on top of cfg.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process("arena", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if env.SystemPrompt != "" {
		c.SystemPrompt = env.SystemPrompt
	}
	if env.RequestTimeout > 0 {
		c.RequestTimeout = Duration(env.RequestTimeout)
	}
	models := map[string]string{
		"claude":  env.ClaudeModel,
		"chatgpt": env.ChatGPTModel,
		"gemini":  env.GeminiModel,
		"ollama":  env.OllamaModel,
	}
	for i := range c.Backends {
		b := &c.Backends[i]
		if m := models[b.Key]; m != "" {
			b.Model = m
		}
		if b.Provider == "ollama" && b.BaseURL == "" && env.OllamaHost != "" {
			b.BaseURL = env.OllamaHost
			if !strings.Contains(b.BaseURL, "://") {
				b.BaseURL = "http://" + b.BaseURL
			}
		}
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and that backend keys are unique.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	keys := lo.Map(c.Backends, func(b BackendConfig, _ int) string { return b.Key })
	if dups := lo.FindDuplicates(keys); len(dups) > 0 {
		return fmt.Errorf("invalid config: duplicate backend keys: %s", strings.Join(dups, ", "))
	}
	return nil
}

// SystemPromptFor returns the backend's own instruction or the shared one.
func (c *Config) SystemPromptFor(b BackendConfig) string {
	if b.SystemPrompt != "" {
		return b.SystemPrompt
	}
	return c.SystemPrompt
}

// APIKey resolves the backend's credential from its configured environment
// variable. Backends without APIKeyEnv fall back to their provider's
// standard variable at construction.
func (b BackendConfig) APIKey() string {
	if b.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(b.APIKeyEnv)
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
