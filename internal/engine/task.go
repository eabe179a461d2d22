package engine

import (
	"io/fs"
	"time"

	"github.com/bamsammich/dcp/internal/event"
)

// PathKind classifies a filesystem path.
type PathKind int

const (
	Missing PathKind = iota
	File
	Directory
	Unsupported // devices, sockets, fifos
)

func (k PathKind) String() string {
	switch k {
	case Missing:
		return "missing"
	case File:
		return "file"
	case Directory:
		return "directory"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Plan maps one source entry to one destination entry.
type Plan struct {
	Src     string // absolute
	Dst     string // absolute
	Rel     string // relative to the source root, "." for the root
	Kind    PathKind
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	AccTime time.Time

	// Err is set when the entry could not be inspected; the orchestrator
	// records it as a failure.
	Err error
}

// Action is what happened to a plan.
type Action int

const (
	Copied Action = iota + 1
	Overwritten
	Skipped
	Failed
	DirCreated
	DirExisting
)

func (a Action) String() string {
	switch a {
	case Copied:
		return "copied"
	case Overwritten:
		return "overwritten"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	case DirCreated:
		return "dir-created"
	case DirExisting:
		return "dir-existing"
	default:
		return "unknown"
	}
}

// Outcome is the per-entry result recorded by the orchestrator.
type Outcome struct {
	Plan   Plan
	Action Action
	Reason event.SkipReason
	Bytes  int64
	Err    error
}
