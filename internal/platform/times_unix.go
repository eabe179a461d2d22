//go:build linux || darwin || freebsd || netbsd || openbsd

package platform

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// SetTimes sets access and modification times on path with nanosecond
// precision. Symlinks are followed.
func SetTimes(path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	if err := unix.UtimesNano(path, times); err != nil {
		return fmt.Errorf("utimensat %s: %w", path, err)
	}
	return nil
}
