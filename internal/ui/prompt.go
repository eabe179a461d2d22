package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Prompter asks yes/no questions on a terminal. The default answer is no.
// Once the input is exhausted every further question is declined without
// being shown.
type Prompter struct {
	out    io.Writer
	bold   *color.Color
	lines  chan string
	once   sync.Once
	in     *bufio.Reader
	closed bool
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer, colored bool) *Prompter {
	bold := color.New(color.FgYellow, color.Bold)
	if colored {
		bold.EnableColor()
	} else {
		bold.DisableColor()
	}
	return &Prompter{out: out, bold: bold, in: bufio.NewReader(in)}
}

// start launches the single reader goroutine. Reading from a terminal
// cannot be interrupted, so a pending read is abandoned on cancellation
// rather than waited for.
func (p *Prompter) start() {
	p.lines = make(chan string)
	go func() {
		defer close(p.lines)
		for {
			line, err := p.in.ReadString('\n')
			if line != "" || err == nil {
				p.lines <- line
			}
			if err != nil {
				return
			}
		}
	}()
}

// Confirm implements engine.Confirmer. Answers are y/yes or n/no in any
// case; an empty answer means no and anything else repeats the question.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	p.once.Do(p.start)
	if p.closed {
		return false, nil
	}

	for {
		p.bold.Fprintf(p.out, "%s [y/N]: ", question) //nolint:errcheck // terminal output

		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out)
			return false, ctx.Err()
		case line, ok := <-p.lines:
			if !ok {
				p.closed = true
				fmt.Fprintln(p.out)
				return false, nil
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return true, nil
			case "", "n", "no":
				return false, nil
			default:
				fmt.Fprintln(p.out, "Error: invalid input")
			}
		}
	}
}
