package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/HexSleeves/llm-arena/internal/arena"
	"github.com/HexSleeves/llm-arena/internal/config"
	"github.com/HexSleeves/llm-arena/internal/console"
	"github.com/HexSleeves/llm-arena/internal/llm"
	"github.com/HexSleeves/llm-arena/internal/output"
	"github.com/urfave/cli/v3"
)

// Overridden in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	configPath := cmd.String("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cli.Command) *log.Logger {
	if !cmd.Bool("verbose") {
		return log.New(io.Discard, "", 0)
	}
	return log.New(stderr, "", log.LstdFlags)
}

func newPrinter(cmd *cli.Command) *output.Printer {
	mode := output.DetectMode(cmd.Bool("plain"))
	if stdout == os.Stdout {
		return output.NewPrinter(mode, cmd.Bool("verbose"))
	}
	return output.NewPrinterWithWriter(mode, cmd.Bool("verbose"), stdout)
}

func cmdPlay(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return fmt.Errorf("unexpected arguments %v: arena reads its setup interactively", cmd.Args().Slice())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	registry := buildRegistry(ctx, cfg, logger)

	session := arena.NewSession(
		console.New(stdin, stdout),
		registry,
		newPrinter(cmd),
		logger,
		time.Duration(cfg.RequestTimeout),
	)
	return session.Run(ctx)
}

func cmdConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p := newPrinter(cmd)
	timeout := "none"
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout).String()
	}
	p.Section(fmt.Sprintf("Configuration (%s)", configPath))
	p.KeyValue([][]string{
		{"System prompt", cfg.SystemPrompt},
		{"Request timeout", timeout},
	})

	rows := make([][]string, 0, len(cfg.Backends))
	for _, b := range cfg.Backends {
		model := b.Model
		if model == "" {
			model = "(provider default)"
		}
		rows = append(rows, []string{b.Key, b.Provider, model, b.Name, credentialStatus(b)})
	}
	p.Table([]string{"Key", "Provider", "Model", "Name", "Credential"}, rows)

	for _, b := range cfg.Backends {
		if b.APIKeyEnv != "" && b.APIKey() == "" {
			p.Warning("%s is not set; the %s backend cannot be selected", b.APIKeyEnv, b.Key)
		}
	}
	return nil
}

func credentialStatus(b config.BackendConfig) string {
	switch {
	case b.APIKeyEnv == "" && b.Provider == "ollama":
		return "none needed"
	case b.APIKeyEnv == "":
		return "provider env var"
	case b.APIKey() != "":
		return b.APIKeyEnv + " set"
	default:
		return b.APIKeyEnv + " missing"
	}
}

func cmdInit(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	newPrinter(cmd).Success("Config saved to %s", configPath)
	return nil
}

// buildRegistry registers one lazily built backend per configured key.
func buildRegistry(ctx context.Context, cfg *config.Config, logger *log.Logger) *llm.Registry {
	registry := llm.NewRegistry()
	for _, b := range cfg.Backends {
		registry.Register(b.Key, func() (llm.Backend, error) {
			logger.Printf("building backend %s (provider %s, model %q)", b.Key, b.Provider, b.Model)
			return llm.NewFromConfig(ctx, llm.ProviderConfig{
				Provider:     b.Provider,
				Model:        b.Model,
				Name:         b.Name,
				SystemPrompt: cfg.SystemPromptFor(b),
				APIKey:       b.APIKey(),
				BaseURL:      b.BaseURL,
			})
		})
	}
	return registry
}

func reportError(err error) {
	output.NewPrinterWithWriter(output.DetectModeFor(stderr, false), false, stderr).Error(err)
}
