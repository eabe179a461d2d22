package platform

import (
	"errors"
	"fmt"
)

// DefaultBufferSize is used when the filesystem does not report a preferred
// I/O block size.
const DefaultBufferSize = 8192

// ErrShortWrite is returned when a write accepts fewer bytes than offered
// without reporting an error.
var ErrShortWrite = errors.New("short write")

// CopyError reports a failed read/write loop and how far it got.
type CopyError struct {
	Op     string // "read" or "write"
	Offset int64  // bytes successfully written before the failure
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }
