package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/ui"
	"golang.org/x/term"
)

var (
	mutedStyle   = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	successStyle = lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	failStyle    = lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle    = lipgloss.NewStyle().Foreground(ui.ColorWarning)
)

// isTerminalWriter reports whether w is a terminal file.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withSpinner runs fn behind a spinner on w when w is a terminal, and
// plainly otherwise so pipes and --json output stay clean.
func withSpinner(w io.Writer, label string, fn func() error) error {
	if machineMode || !isTerminalWriter(w) {
		return fn()
	}

	s := ui.NewSpinner(w, label)
	s.Start()
	err := fn()
	if err != nil {
		s.Fail()
		return err
	}
	s.Success()
	return nil
}

// printOK writes a "✓ message" line.
func printOK(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), msg)
}

// printFail writes a "✗ summary" line for err.
func printFail(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", failStyle.Render(ui.SymbolFail), errors.Summary(err))
}

// printWarn writes a muted warning line.
func printWarn(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", warnStyle.Render("!"), msg)
}
