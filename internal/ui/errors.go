package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// ErrorPrinter writes error lines in red. It is shared by the presenter
// goroutine and the command, so writes are serialized.
type ErrorPrinter struct {
	mu  sync.Mutex
	w   io.Writer
	red *color.Color
}

// NewErrorPrinter returns a printer writing to w, colored when colored is
// true.
func NewErrorPrinter(w io.Writer, colored bool) *ErrorPrinter {
	red := color.New(color.FgRed)
	if colored {
		red.EnableColor()
	} else {
		red.DisableColor()
	}
	return &ErrorPrinter{w: w, red: red}
}

// Entry reports a failure scoped to one path relative to the copy root.
func (p *ErrorPrinter) Entry(rel string, err error) {
	if rel == "" || rel == "." {
		p.Error(err)
		return
	}
	p.print(fmt.Sprintf("error: %s: %v", rel, err))
}

// Error reports a failure not tied to a single entry.
func (p *ErrorPrinter) Error(err error) {
	p.print(fmt.Sprintf("error: %v", err))
}

func (p *ErrorPrinter) print(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.red.Fprintln(p.w, line) //nolint:errcheck // best-effort terminal output
}
