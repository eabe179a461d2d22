package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal errors abort the run before anything is mutated.
var (
	ErrSourceNotFound    = errors.New("source not found")
	ErrArgumentConflict  = errors.New("argument conflict")
	ErrInvalidBufferSize = errors.New("invalid buffer size")
	ErrInvalidRequest    = errors.New("invalid request")
)

// ErrInterrupted is returned when the context is cancelled mid-run. The
// result still carries the statistics gathered so far.
var ErrInterrupted = errors.New("interrupted")

// Per-entry errors are recorded against a single plan; the walk continues.
var (
	ErrUnsupportedEntry = errors.New("unsupported entry kind")
	ErrSymlinkLoop      = errors.New("symlink loop")
	ErrVerifyMismatch   = errors.New("checksum mismatch after copy")
	ErrKindMismatch     = errors.New("destination exists with a different kind")
)

// TransferError reports a file copy that failed part way through.
type TransferError struct {
	Src    string
	Dst    string
	Offset int64 // bytes written before the failure
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("copy %s -> %s failed at offset %d: %v", e.Src, e.Dst, e.Offset, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// EntryError is a failure scoped to one plan.
type EntryError struct {
	Path string // source path
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// RunError aggregates every per-entry failure of a run.
type RunError struct {
	Failures []*EntryError
}

func (e *RunError) Error() string {
	switch len(e.Failures) {
	case 0:
		return "no failures"
	case 1:
		return e.Failures[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d entries failed:", len(e.Failures))
	for _, f := range e.Failures {
		b.WriteString("\n  ")
		b.WriteString(f.Error())
	}
	return b.String()
}

func (e *RunError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
