package arena

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// call is one Ask recorded by a fakeBackend.
type call struct {
	backend string
	prompt  string
}

// callLog is shared by every fake in a test so cross-backend order is visible.
type callLog struct {
	mu    sync.Mutex
	calls []call
}

func (l *callLog) record(backend, prompt string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call{backend: backend, prompt: prompt})
}

func (l *callLog) snapshot() []call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]call(nil), l.calls...)
}

func (l *callLog) backends() []string {
	var out []string
	for _, c := range l.snapshot() {
		out = append(out, c.backend)
	}
	return out
}

// fakeBackend answers "<name> answer #n" for its n-th call unless replies
// are scripted.
type fakeBackend struct {
	name    string
	log     *callLog
	replies []string
	errAt   int // 1-based call number that fails; 0 never fails
	err     error
	n       int
}

func newFake(name string, log *callLog) *fakeBackend {
	return &fakeBackend{name: name, log: log}
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Ask(ctx context.Context, prompt string) (string, error) {
	f.n++
	f.log.record(f.name, prompt)
	if f.errAt != 0 && f.n == f.errAt {
		return "", f.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.n <= len(f.replies) {
		return f.replies[f.n-1], nil
	}
	return fmt.Sprintf("%s answer #%d", f.name, f.n), nil
}

// blockingBackend waits for its context to end.
type blockingBackend struct{ name string }

func (b *blockingBackend) Name() string { return b.name }

func (b *blockingBackend) Ask(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// event is one Reporter callback, flattened for comparison.
type event string

type recordingReporter struct {
	events []event
}

func (r *recordingReporter) RoundStarted(number int) {
	r.events = append(r.events, event(fmt.Sprintf("round %d", number)))
}

func (r *recordingReporter) Asking(role Role, name string) {
	r.events = append(r.events, event(fmt.Sprintf("asking %s %s", role, name)))
}

func (r *recordingReporter) Answered(role Role, name, text string, _ time.Duration) {
	r.events = append(r.events, event(fmt.Sprintf("answered %s %s", role, name)))
}

func (r *recordingReporter) Failed(role Role, name string, err error) {
	r.events = append(r.events, event(fmt.Sprintf("failed %s %s", role, name)))
}

// scriptedInput replays answers in order and records everything printed.
type scriptedInput struct {
	answers []string
	labels  []string
	printed []string
}

func (s *scriptedInput) Prompt(label string) (string, error) {
	s.labels = append(s.labels, label)
	if len(s.answers) == 0 {
		return "", errInputExhausted
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return strings.TrimSpace(a), nil
}

func (s *scriptedInput) Confirm(label string) (bool, error) {
	a, err := s.Prompt(label)
	if err != nil {
		return false, err
	}
	return strings.ToLower(a) == "y", nil
}

func (s *scriptedInput) Println(text string) {
	s.printed = append(s.printed, text)
}

var errInputExhausted = fmt.Errorf("scripted input exhausted")
