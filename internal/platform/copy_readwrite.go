package platform

import (
	"context"
	"errors"
	"io"
)

// CopyReadWrite streams src into dst through buf and returns the number of
// bytes written. Each iteration reads at most len(buf) bytes and writes them
// in a single call, so memory use is bounded by buf regardless of file size.
// io.Copy must not be used here: it hands *os.File pairs to
// copy_file_range or sendfile.
func CopyReadWrite(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, errors.New("copy buffer is empty")
	}

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, &CopyError{Op: "read", Offset: written, Err: err}
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			if w > 0 {
				written += int64(w)
			}
			if werr != nil {
				return written, &CopyError{Op: "write", Offset: written, Err: werr}
			}
			if w != n {
				return written, &CopyError{Op: "write", Offset: written, Err: ErrShortWrite}
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, &CopyError{Op: "read", Offset: written, Err: rerr}
		}
	}
}
