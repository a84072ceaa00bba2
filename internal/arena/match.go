// Package arena runs a match: two backends answer the same problem round
// after round, each seeing the other's last answer, and a third backend
// judges every round.
package arena

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/HexSleeves/llm-arena/internal/llm"
)

// Role is the part a backend plays in a match.
type Role int

const (
	PlayerOne Role = iota
	PlayerTwo
	Judge
)

func (r Role) String() string {
	switch r {
	case PlayerOne:
		return "player one"
	case PlayerTwo:
		return "player two"
	case Judge:
		return "judge"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Round holds one completed cycle. Only the latest round is kept around;
// it feeds the next round's prompts and is then dropped.
type Round struct {
	Number    int
	PlayerOne string
	PlayerTwo string
	Verdict   string
}

// Reporter is told about every step of a match, in order.
type Reporter interface {
	RoundStarted(number int)
	Asking(role Role, name string)
	Answered(role Role, name, text string, elapsed time.Duration)
	Failed(role Role, name string, err error)
}

// Continuer decides after each round whether to play another one.
type Continuer func(ctx context.Context, last *Round) (bool, error)

type Match struct {
	problem   string
	playerOne llm.Backend
	playerTwo llm.Backend
	judge     llm.Backend
	reporter  Reporter
	logger    *log.Logger
	timeout   time.Duration
}

type Option func(*Match)

// WithReporter sets the display sink. Without one the match runs silently.
func WithReporter(r Reporter) Option {
	return func(m *Match) { m.reporter = r }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Match) { m.logger = l }
}

// WithTimeout bounds each backend call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(m *Match) { m.timeout = d }
}

func NewMatch(problem string, playerOne, playerTwo, judge llm.Backend, opts ...Option) *Match {
	m := &Match{
		problem:   problem,
		playerOne: playerOne,
		playerTwo: playerTwo,
		judge:     judge,
		reporter:  nopReporter{},
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PlayRound plays round number. prev is the previous round and is ignored
// for round one. Player one answers first, then player two, then the judge.
func (m *Match) PlayRound(ctx context.Context, number int, prev *Round) (*Round, error) {
	m.reporter.RoundStarted(number)

	promptOne, promptTwo := playerPrompts(m.problem, number, prev)

	answerOne, err := m.ask(ctx, PlayerOne, m.playerOne, promptOne)
	if err != nil {
		return nil, err
	}
	answerTwo, err := m.ask(ctx, PlayerTwo, m.playerTwo, promptTwo)
	if err != nil {
		return nil, err
	}

	judgePrompt := JudgePrompt(m.problem,
		m.playerOne.Name(), answerOne,
		m.playerTwo.Name(), answerTwo)
	verdict, err := m.ask(ctx, Judge, m.judge, judgePrompt)
	if err != nil {
		return nil, err
	}

	return &Round{
		Number:    number,
		PlayerOne: answerOne,
		PlayerTwo: answerTwo,
		Verdict:   verdict,
	}, nil
}

// Run plays rounds until cont declines or an error occurs, and returns the
// last completed round.
func (m *Match) Run(ctx context.Context, cont Continuer) (*Round, error) {
	var last *Round
	for number := 1; ; number++ {
		round, err := m.PlayRound(ctx, number, last)
		if err != nil {
			return last, fmt.Errorf("round %d: %w", number, err)
		}
		last = round

		again, err := cont(ctx, last)
		if err != nil {
			return last, err
		}
		if !again {
			return last, nil
		}
	}
}

func (m *Match) ask(ctx context.Context, role Role, b llm.Backend, prompt string) (string, error) {
	name := b.Name()
	m.reporter.Asking(role, name)

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := b.Ask(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		m.logger.Printf("%s (%s) failed after %v: %v", name, role, elapsed.Round(time.Millisecond), err)
		m.reporter.Failed(role, name, err)
		return "", fmt.Errorf("%s: %w", role, err)
	}

	m.logger.Printf("%s (%s) answered in %v (%d bytes)", name, role, elapsed.Round(time.Millisecond), len(text))
	m.reporter.Answered(role, name, text, elapsed)
	return text, nil
}

type nopReporter struct{}

func (nopReporter) RoundStarted(int) {}
func (nopReporter) Asking(Role, string) {}
func (nopReporter) Answered(Role, string, string, time.Duration) {}
func (nopReporter) Failed(Role, string, error) {}
