package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	RunStarted Type = iota + 1
	RunFinished
	FileCopied
	FileOverwritten
	FileSkipped
	FileFailed
	DirCreated
	DirExists
	DirFailed
	// Flush is not emitted by the engine. A presenter closes Ack once every
	// event sent before it has been displayed.
	Flush
)

var typeNames = [...]string{
	RunStarted:      "RunStarted",
	RunFinished:     "RunFinished",
	FileCopied:      "FileCopied",
	FileOverwritten: "FileOverwritten",
	FileSkipped:     "FileSkipped",
	FileFailed:      "FileFailed",
	DirCreated:      "DirCreated",
	DirExists:       "DirExists",
	DirFailed:       "DirFailed",
	Flush:           "Flush",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// SkipReason explains why a file was left untouched.
type SkipReason int

const (
	NoReason SkipReason = iota
	IdenticalContent
	UserDeclined
)

func (r SkipReason) String() string {
	switch r {
	case IdenticalContent:
		return "identical"
	case UserDeclined:
		return "declined"
	default:
		return ""
	}
}

// Event represents a single progress event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // relative to the source root ("." for the root itself)
	SrcPath   string
	DstPath   string
	Size      int64 // source size, or bytes written for copies
	Reason    SkipReason
	DryRun    bool
	Error     error
	Ack       chan<- struct{} // Flush only
}
