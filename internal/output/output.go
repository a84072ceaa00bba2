// Package output renders a match on the terminal.
package output

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Mode represents the output mode.
type Mode int

const (
	// ModePretty uses pterm styling and spinners.
	ModePretty Mode = iota
	// ModePlain writes unstyled text, for pipes and logs.
	ModePlain
)

func (m Mode) String() string {
	if m == ModePlain {
		return "plain"
	}
	return "pretty"
}

// DetectMode picks ModePretty when stdout is a terminal and plain was not
// forced.
func DetectMode(forcePlain bool) Mode {
	return DetectModeFor(os.Stdout, forcePlain)
}

// DetectModeFor is DetectMode for an arbitrary stream. Anything that is not
// a terminal file gets ModePlain.
func DetectModeFor(w io.Writer, forcePlain bool) Mode {
	f, ok := w.(*os.File)
	if forcePlain || !ok || !term.IsTerminal(int(f.Fd())) {
		return ModePlain
	}
	return ModePretty
}
