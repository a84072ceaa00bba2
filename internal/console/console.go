// Package console reads the interactive answers the arena asks for.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEndOfInput is returned when input closes before an answer is read.
var ErrEndOfInput = errors.New("end of input")

// Console prompts on out and reads one line per answer from in.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Prompt writes label and returns the next line with surrounding whitespace
// removed. A last line without a trailing newline is still returned.
func (c *Console) Prompt(label string) (string, error) {
	if _, err := io.WriteString(c.out, label); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return strings.TrimSpace(line), nil
			}
			return "", ErrEndOfInput
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Only "y" (any case) counts as yes.
func (c *Console) Confirm(label string) (bool, error) {
	answer, err := c.Prompt(label)
	if err != nil {
		return false, err
	}
	return strings.ToLower(answer) == "y", nil
}

// Println writes a plain line to the console output.
func (c *Console) Println(text string) {
	fmt.Fprintln(c.out, text)
}
