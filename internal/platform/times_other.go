//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package platform

import (
	"os"
	"time"
)

// SetTimes sets access and modification times on path.
func SetTimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}
