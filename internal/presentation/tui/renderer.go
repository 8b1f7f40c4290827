package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return "", err
		}
		return r.Render(markdown)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Styler colours short status strings. Colours are dropped when the output
// is not a terminal.
type Styler struct {
	out *termenv.Output
}

// NewStyler detects the colour profile of w.
func NewStyler(w io.Writer) Styler {
	return Styler{out: termenv.NewOutput(w)}
}

// OK renders s as a success.
func (s Styler) OK(text string) string {
	return s.out.String(text).Foreground(s.out.Color("#22c55e")).String()
}

// Error renders s as a failure.
func (s Styler) Error(text string) string {
	return s.out.String(text).Foreground(s.out.Color("#ef4444")).Bold().String()
}

// Faint renders s dimmed.
func (s Styler) Faint(text string) string {
	return s.out.String(text).Faint().String()
}
