package ui

import (
	"os"

	"golang.org/x/term"
)

// fder is satisfied by *os.File.
type fder interface {
	Fd() uintptr
}

// IsTTY reports whether f refers to a terminal.
func IsTTY(f fder) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// TermWidth returns the terminal width in columns, or 0 if f is not a
// terminal.
func TermWidth(f fder) int {
	w, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // fd fits in int
	if err != nil || w <= 0 {
		return 0
	}
	return w
}

// ColorEnabled resolves a color mode ("auto", "always" or "never") for an
// output stream. In auto mode color follows the terminal and NO_COLOR.
func ColorEnabled(mode string, isTTY bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTTY
}
