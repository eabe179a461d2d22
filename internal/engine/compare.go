package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bamsammich/dcp/internal/platform"
)

// Oracle decides whether an existing destination file already holds the
// source's content. Implementations must never decide on size alone.
type Oracle interface {
	Equivalent(ctx context.Context, src, dst string) (bool, error)
	Name() string
}

// NewOracle returns the oracle registered under name ("hash" or "bytes").
//
//nolint:ireturn // factory returns interface by design
func NewOracle(name string, bufferSize int) (Oracle, error) {
	switch name {
	case "", "hash":
		return HashOracle{BufferSize: bufferSize}, nil
	case "bytes":
		return ByteOracle{BufferSize: bufferSize}, nil
	default:
		return nil, fmt.Errorf("unknown comparison %q (use hash or bytes)", name)
	}
}

// HashOracle compares sizes, then BLAKE3 digests.
type HashOracle struct {
	BufferSize int
}

func (HashOracle) Name() string { return "hash" }

func (o HashOracle) Equivalent(ctx context.Context, src, dst string) (bool, error) {
	decided, equal, err := precheck(src, dst)
	if decided || err != nil {
		return equal, err
	}

	buf := make([]byte, bufferOrDefault(o.BufferSize))
	srcHash, err := HashFile(ctx, src, buf)
	if err != nil {
		return false, err
	}
	dstHash, err := HashFile(ctx, dst, buf)
	if err != nil {
		return false, err
	}
	return srcHash == dstHash, nil
}

// ByteOracle compares sizes, then streams both files side by side and stops
// at the first differing chunk.
type ByteOracle struct {
	BufferSize int
}

func (ByteOracle) Name() string { return "bytes" }

func (o ByteOracle) Equivalent(ctx context.Context, src, dst string) (bool, error) {
	decided, equal, err := precheck(src, dst)
	if decided || err != nil {
		return equal, err
	}

	sf, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", src, err)
	}
	defer sf.Close()

	df, err := os.Open(dst)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", dst, err)
	}
	defer df.Close()

	size := bufferOrDefault(o.BufferSize)
	sbuf := make([]byte, size)
	dbuf := make([]byte, size)

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		sn, serr := io.ReadFull(sf, sbuf)
		dn, derr := io.ReadFull(df, dbuf)
		if serr != nil && !isEOF(serr) {
			return false, fmt.Errorf("read %s: %w", src, serr)
		}
		if derr != nil && !isEOF(derr) {
			return false, fmt.Errorf("read %s: %w", dst, derr)
		}
		if sn != dn || !bytes.Equal(sbuf[:sn], dbuf[:dn]) {
			return false, nil
		}
		if serr != nil || derr != nil {
			// Both hit EOF at the same offset.
			return isEOF(serr) && isEOF(derr), nil
		}
	}
}

// precheck settles the cheap cases: the same file on both sides is always
// equivalent, a size mismatch never is.
func precheck(src, dst string) (decided, equal bool, err error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return true, false, fmt.Errorf("stat %s: %w", src, err)
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return true, false, fmt.Errorf("stat %s: %w", dst, err)
	}
	if os.SameFile(srcInfo, dstInfo) {
		return true, true, nil
	}
	if srcInfo.Size() != dstInfo.Size() {
		return true, false, nil
	}
	return false, false, nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func bufferOrDefault(n int) int {
	if n <= 0 {
		return platform.DefaultBufferSize
	}
	return n
}
