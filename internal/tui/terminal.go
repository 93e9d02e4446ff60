package tui

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether prompts and progress bars can be shown,
// which needs both stdin and stderr to be terminals.
func Interactive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stderr)
}
