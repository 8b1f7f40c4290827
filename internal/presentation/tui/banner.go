package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the flowstudio ASCII art banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _                   _             _ _       ", "#34d399"},
		{"  / _| | _____      _____| |_ _   _  __| (_) ___  ", "#2dd4bf"},
		{" | |_| |/ _ \\ \\ /\\ / / __| __| | | |/ _` | |/ _ \\ ", "#22d3ee"},
		{" |  _| | (_) \\ V  V /\\__ \\ |_| |_| | (_| | | (_) |", "#38bdf8"},
		{" |_| |_|\\___/ \\_/\\_/ |___/\\__|\\__,_|\\__,_|_|\\___/ ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  version "+version).Faint())
	fmt.Fprintln(w)
}
