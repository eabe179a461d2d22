//go:build linux || darwin || freebsd || netbsd || openbsd

package platform

import "golang.org/x/sys/unix"

// PreferredBlockSize returns the filesystem's preferred I/O size (st_blksize)
// for path, or DefaultBufferSize when it cannot be determined.
func PreferredBlockSize(path string) int {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil || st.Blksize <= 0 {
		return DefaultBufferSize
	}
	return int(st.Blksize)
}
