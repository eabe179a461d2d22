//go:build darwin

package engine

import (
	"io/fs"
	"syscall"
	"time"
)

// accessTime returns the access time recorded in info, falling back to the
// modification time.
func accessTime(info fs.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec)
}
