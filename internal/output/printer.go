package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/HexSleeves/llm-arena/internal/arena"
	"github.com/HexSleeves/llm-arena/internal/console"
	"github.com/HexSleeves/llm-arena/internal/llm"
	"github.com/pterm/pterm"
)

// Printer wraps pterm for styled output. In ModePlain it writes bare text.
// It also implements arena.Reporter.
type Printer struct {
	mode    Mode
	verbose bool
	writer  io.Writer
	spin    bool
	spinner *pterm.SpinnerPrinter
}

// NewPrinter creates a Printer on stdout. Spinners run in ModePretty only.
func NewPrinter(mode Mode, verbose bool) *Printer {
	return &Printer{
		mode:    mode,
		verbose: verbose,
		writer:  os.Stdout,
		spin:    mode == ModePretty,
	}
}

// NewPrinterWithWriter creates a Printer with a custom writer (for testing).
// It never starts spinners.
func NewPrinterWithWriter(mode Mode, verbose bool, w io.Writer) *Printer {
	return &Printer{
		mode:    mode,
		verbose: verbose,
		writer:  w,
	}
}

func (p *Printer) pretty() bool {
	return p.mode == ModePretty
}

// Section prints a section header.
func (p *Printer) Section(text string) {
	if !p.pretty() {
		fmt.Fprintf(p.writer, "\n%s\n", text)
		return
	}
	pterm.DefaultSection.
		WithWriter(p.writer).
		Println(text)
}

// Success prints a success message.
func (p *Printer) Success(format string, args ...interface{}) {
	if !p.pretty() {
		fmt.Fprintf(p.writer, format+"\n", args...)
		return
	}
	pterm.Success.WithWriter(p.writer).Printfln(format, args...)
}

// Warning prints a warning message.
func (p *Printer) Warning(format string, args ...interface{}) {
	if !p.pretty() {
		fmt.Fprintf(p.writer, "warning: "+format+"\n", args...)
		return
	}
	pterm.Warning.WithWriter(p.writer).Printfln(format, args...)
}

// Table prints a table with headers and rows.
func (p *Printer) Table(headers []string, rows [][]string) {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	pterm.DefaultTable.
		WithWriter(p.writer).
		WithHasHeader().
		WithData(data).
		Render() //nolint:errcheck
}

// KeyValue prints key-value pairs in a formatted way.
func (p *Printer) KeyValue(pairs [][]string) {
	for _, pair := range pairs {
		if len(pair) != 2 {
			continue
		}
		key := pair[0] + ":"
		if p.pretty() {
			key = pterm.LightCyan(key)
		}
		fmt.Fprintf(p.writer, "  %s  %s\n", key, pair[1])
	}
}

// RoundStarted prints the round banner.
func (p *Printer) RoundStarted(number int) {
	p.Section(fmt.Sprintf("✽ Round %d ✽", number))
}

// Asking prints the responder header and, in pretty mode on a terminal,
// starts a spinner until the answer arrives.
func (p *Printer) Asking(role arena.Role, name string) {
	var header string
	if role == arena.Judge {
		header = fmt.Sprintf("✽ %s's Judgement ✽", name)
	} else {
		header = fmt.Sprintf("🤖 %s's Answer", name)
	}

	if p.pretty() {
		style := pterm.NewStyle(pterm.FgLightCyan, pterm.Bold)
		if role == arena.Judge {
			style = pterm.NewStyle(pterm.FgLightMagenta, pterm.Bold)
		}
		fmt.Fprintf(p.writer, "\n%s\n", style.Sprint(header))
	} else {
		fmt.Fprintf(p.writer, "\n%s\n", header)
	}

	if p.spin {
		p.spinner, _ = pterm.DefaultSpinner.
			WithWriter(p.writer).
			WithRemoveWhenDone(true).
			Start(fmt.Sprintf("Waiting for %s...", name))
	}
}

// Answered stops the spinner and prints the reply verbatim.
func (p *Printer) Answered(role arena.Role, name, text string, elapsed time.Duration) {
	p.stopSpinner()
	fmt.Fprintln(p.writer, strings.TrimRight(text, "\n"))
	if p.verbose {
		p.debug("%s answered in %v", name, elapsed.Round(time.Millisecond))
	}
}

// Failed stops the spinner. The error itself is rendered by Error once the
// session unwinds.
func (p *Printer) Failed(role arena.Role, name string, err error) {
	if p.spinner != nil {
		p.spinner.Fail(fmt.Sprintf("%s failed", name))
		p.spinner = nil
	}
}

func (p *Printer) stopSpinner() {
	if p.spinner != nil {
		p.spinner.Stop() //nolint:errcheck
		p.spinner = nil
	}
}

func (p *Printer) debug(format string, args ...interface{}) {
	if !p.pretty() {
		fmt.Fprintf(p.writer, "debug: "+format+"\n", args...)
		return
	}
	dbg := &pterm.PrefixPrinter{
		Prefix: pterm.Prefix{
			Text:  " DEBUG ",
			Style: pterm.NewStyle(pterm.BgGray, pterm.FgWhite),
		},
		Writer: p.writer,
	}
	dbg.Printfln(format, args...)
}

// Error renders a fatal error, naming the failure class.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	msg := Describe(err)
	if !p.pretty() {
		fmt.Fprintf(p.writer, "error: %s\n", msg)
		return
	}
	pterm.Error.WithWriter(p.writer).Println(msg)
}

// Describe turns an error into a one-line message for the user.
func Describe(err error) string {
	var unknown *llm.UnknownBackendError
	if errors.As(err, &unknown) {
		return fmt.Sprintf("unknown backend %q; choose one of: %s",
			unknown.Key, strings.Join(unknown.Available, ", "))
	}
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		return fmt.Sprintf("provider error from %s (%s): %v", perr.Backend, perr.Kind, perr.Err)
	}
	if errors.Is(err, console.ErrEndOfInput) {
		return "input closed before the match finished"
	}
	return err.Error()
}
