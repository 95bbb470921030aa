package render

import (
	"os"

	"golang.org/x/term"
)

const defaultTermWidth = 100

// terminalWidth returns the current terminal width, falling back to a default.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
