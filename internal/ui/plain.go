package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/bamsammich/dcp/internal/event"
	"github.com/bamsammich/dcp/internal/stats"
)

// plainPresenter prints a header, one line per file and a final summary to
// stdout, and errors to stderr.
type plainPresenter struct {
	w       io.Writer
	errs    *ErrorPrinter
	stats   stats.ReadTicker
	verbose bool
	width   int

	dryRun bool
}

func (p *plainPresenter) Run(events <-chan event.Event) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
		}
	}
}

func (p *plainPresenter) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.RunStarted:
		p.dryRun = ev.DryRun
		header := "copying"
		if ev.DryRun {
			header = "dry run: copying"
		}
		fmt.Fprintf(p.w, "%s %s -> %s\n", header, ev.SrcPath, ev.DstPath)
	case event.FileCopied:
		p.fileLine(p.verb("copied", "would copy"), ev, true)
	case event.FileOverwritten:
		p.fileLine(p.verb("overwritten", "would overwrite"), ev, true)
	case event.FileSkipped:
		p.fileLine(fmt.Sprintf("skipped (%s)", ev.Reason), ev, false)
	case event.DirCreated:
		if p.verbose && ev.Path != "." {
			fmt.Fprintf(p.w, "%-17s %s%c\n", p.verb("created", "would create"), p.path(ev.Path), filepath.Separator)
		}
	case event.FileFailed, event.DirFailed:
		p.errs.Entry(ev.Path, ev.Error)
	case event.Flush:
		close(ev.Ack)
	case event.RunFinished, event.DirExists:
	}
}

func (p *plainPresenter) verb(done, dry string) string {
	if p.dryRun {
		return dry
	}
	return done
}

func (p *plainPresenter) fileLine(verb string, ev event.Event, rate bool) {
	name := ev.Path
	if name == "." {
		name = filepath.Base(ev.DstPath)
	}
	line := fmt.Sprintf("%-17s %s  %s", verb, p.path(name), FormatBytes(ev.Size))
	if rate && !p.dryRun {
		if speed := p.speed(); speed > 0 {
			line += "  " + FormatRate(speed)
		}
	}
	fmt.Fprintln(p.w, line)
}

// speed is the recent throughput, or the run average before the first
// one-second sample exists.
func (p *plainPresenter) speed() float64 {
	if s := p.stats.RollingSpeed(5); s > 0 {
		return s
	}
	return p.stats.Snapshot().Throughput()
}

// path returns a display path, shortened to fit the terminal.
func (p *plainPresenter) path(rel string) string {
	if rel == "." {
		rel = ""
	}
	return TruncatePath(rel, p.width-40)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot(), p.dryRun)
}
