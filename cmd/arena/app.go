package main

import (
	"context"

	"github.com/HexSleeves/llm-arena/internal/config"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"
)

// version is set via ldflags at build time.
// e.g. -ldflags "-X main.version=1.2.3"
var version = "dev"

// newApp creates the CLI application with all flags and commands.
func newApp() *cli.Command {
	return &cli.Command{
		Name:        "arena",
		Usage:       "Pit two LLMs against each other with a third as judge",
		Version:     version,
		UsageText:   "arena [global options] [command [command options]]",
		Description: "Arena asks two chat backends to solve the same problem, feeds each the other's answer every round, and lets a third backend pick a winner.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "arena.json",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Plain text output (no colors or spinners)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Verbose logging to stderr",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := config.LoadEnvFile(cmd.String("env-file")); err != nil {
				return ctx, err
			}
			if cmd.Bool("plain") {
				pterm.DisableStyling()
			}
			return ctx, nil
		},
		Action: cmdPlay,
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "Play an interactive match (default)",
				Action: cmdPlay,
			},
			{
				Name:   "config",
				Usage:  "Show the effective configuration",
				Action: cmdConfig,
			},
			{
				Name:  "init",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing file"},
				},
				Action: cmdInit,
			},
		},
	}
}
