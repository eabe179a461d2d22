// Package ui renders engine events for a terminal and talks to the operator.
package ui

import (
	"io"

	"github.com/bamsammich/dcp/internal/event"
	"github.com/bamsammich/dcp/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan event.Event) error
	// Summary returns the final summary line, or "" if nothing should be
	// printed.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer // per-file lines and summary
	ErrWriter io.Writer // errors, always written
	Stats     stats.ReadTicker
	IsTTY     bool
	Quiet     bool
	Verbose   bool // also report directories
	Width     int  // terminal width for path truncation, 0 = no limit
	Errors    *ErrorPrinter
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	errs := cfg.Errors
	if errs == nil {
		errs = NewErrorPrinter(cfg.ErrWriter, false)
	}
	if cfg.Quiet {
		return &quietPresenter{errs: errs}
	}
	width := 0
	if cfg.IsTTY {
		width = cfg.Width
	}
	return &plainPresenter{
		w:       cfg.Writer,
		errs:    errs,
		stats:   cfg.Stats,
		verbose: cfg.Verbose,
		width:   width,
	}
}
