//go:build !linux && !darwin

package engine

import (
	"io/fs"
	"time"
)

// accessTime falls back to the modification time where atime is not exposed.
func accessTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
