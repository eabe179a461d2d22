//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package platform

// PreferredBlockSize returns DefaultBufferSize; st_blksize is not available here.
func PreferredBlockSize(_ string) int {
	return DefaultBufferSize
}
