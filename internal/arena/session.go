package arena

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/HexSleeves/llm-arena/internal/llm"
)

const continueLabel = "\nDo you want to continue to the next round? (y/n): "

// Input is the interactive side of a session.
type Input interface {
	Prompt(label string) (string, error)
	Confirm(label string) (bool, error)
	Println(text string)
}

// Setup is what the user chooses before the first round. It does not change
// during a match.
type Setup struct {
	PlayerOne string
	PlayerTwo string
	Judge     string
	Problem   string
}

// Session drives one interactive match from backend selection to the last
// verdict.
type Session struct {
	input    Input
	registry *llm.Registry
	reporter Reporter
	logger   *log.Logger
	timeout  time.Duration
}

func NewSession(input Input, registry *llm.Registry, reporter Reporter, logger *log.Logger, timeout time.Duration) *Session {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Session{
		input:    input,
		registry: registry,
		reporter: reporter,
		logger:   logger,
		timeout:  timeout,
	}
}

// Run reads the setup, resolves the three backends and plays rounds until the
// user declines to continue. The first error of any kind ends the session.
func (s *Session) Run(ctx context.Context) error {
	s.input.Println("Available LLMs: " + strings.Join(s.registry.Keys(), ", "))

	setup, err := s.readSelection()
	if err != nil {
		return err
	}

	backends, err := s.registry.Select(setup.PlayerOne, setup.PlayerTwo, setup.Judge)
	if err != nil {
		return err
	}
	playerOne, playerTwo, judge := backends[0], backends[1], backends[2]
	s.logger.Printf("match: %s vs %s, judged by %s", playerOne.Name(), playerTwo.Name(), judge.Name())

	setup.Problem, err = s.input.Prompt("Enter the problem statement: ")
	if err != nil {
		return fmt.Errorf("read problem statement: %w", err)
	}

	m := NewMatch(setup.Problem, playerOne, playerTwo, judge,
		WithReporter(s.reporter),
		WithLogger(s.logger),
		WithTimeout(s.timeout),
	)

	last, err := m.Run(ctx, func(ctx context.Context, _ *Round) (bool, error) {
		again, err := s.input.Confirm(continueLabel)
		if err != nil {
			return false, fmt.Errorf("read continue answer: %w", err)
		}
		return again, nil
	})
	if last != nil {
		s.logger.Printf("match ended after %d round(s)", last.Number)
	}
	return err
}

func (s *Session) readSelection() (Setup, error) {
	var setup Setup
	fields := []struct {
		label string
		dst   *string
	}{
		{"Select player 1: ", &setup.PlayerOne},
		{"Select player 2: ", &setup.PlayerTwo},
		{"Select your judge: ", &setup.Judge},
	}
	for _, f := range fields {
		answer, err := s.input.Prompt(f.label)
		if err != nil {
			return setup, fmt.Errorf("read selection: %w", err)
		}
		*f.dst = llm.Normalize(answer)
	}
	return setup, nil
}
