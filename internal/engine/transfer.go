package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bamsammich/dcp/internal/platform"
)

// TransferConfig controls how file bytes and metadata are moved.
type TransferConfig struct {
	// BufferSize is the chunk size of every read and write. Zero selects the
	// filesystem's preferred block size for each source file.
	BufferSize    int
	PreserveMode  bool
	PreserveTimes bool
	Verify        bool
	Limiter       *rate.Limiter // nil means unlimited
}

// Transferer copies single files through a bounded buffer. Data lands in a
// temporary sibling of the destination and is renamed into place only after
// the copy completes, so a failed transfer never leaves a truncated file
// under the destination name.
//
// A Transferer reuses its buffer and is not safe for concurrent use.
type Transferer struct {
	cfg  TransferConfig
	buf  []byte
	tmps tmpRegistry
}

// NewTransferer validates cfg and returns a Transferer.
func NewTransferer(cfg TransferConfig) (*Transferer, error) {
	if cfg.BufferSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, cfg.BufferSize)
	}
	t := &Transferer{cfg: cfg}
	if cfg.BufferSize > 0 {
		t.buf = make([]byte, cfg.BufferSize)
	}
	return t, nil
}

// buffer returns the chunk buffer for writes into dir.
func (t *Transferer) buffer(dir string) []byte {
	if t.cfg.BufferSize > 0 {
		return t.buf
	}
	size := platform.PreferredBlockSize(dir)
	if cap(t.buf) < size {
		t.buf = make([]byte, size)
	}
	return t.buf[:size]
}

// Transfer copies plan.Src to plan.Dst and returns the number of bytes
// written. The destination's parent directory must already exist. Failures
// are reported as *TransferError carrying the offset reached.
func (t *Transferer) Transfer(ctx context.Context, plan Plan) (written int64, err error) {
	dir := filepath.Dir(plan.Dst)
	base := filepath.Base(plan.Dst)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.dcp-tmp", base, uuid.New().String()[:8]))

	fail := func(stage error) error {
		return &TransferError{Src: plan.Src, Dst: plan.Dst, Offset: written, Err: stage}
	}

	src, err := os.Open(plan.Src)
	if err != nil {
		return 0, fail(fmt.Errorf("open source: %w", err))
	}
	defer src.Close()

	perm := plan.Mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return 0, fail(fmt.Errorf("create temporary: %w", err))
	}
	t.tmps.add(tmpPath)

	committed := false
	defer func() {
		if committed {
			return
		}
		if tmp != nil {
			_ = tmp.Close()
		}
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("remove temporary %s: %w", tmpPath, rmErr))
		}
		t.tmps.remove(tmpPath)
	}()

	// Best effort; the copy below still fails cleanly on ENOSPC.
	platform.Preallocate(tmp, plan.Size)

	written, err = platform.CopyReadWrite(ctx, tmp, throttle(ctx, src, t.cfg.Limiter), t.buffer(dir))
	if err != nil {
		return written, fail(err)
	}

	if t.cfg.PreserveMode {
		if err := tmp.Chmod(plan.Mode.Perm()); err != nil {
			return written, fail(fmt.Errorf("chmod: %w", err))
		}
	}

	closeErr := tmp.Close()
	tmp = nil
	if closeErr != nil {
		return written, fail(fmt.Errorf("close temporary: %w", closeErr))
	}

	if t.cfg.PreserveTimes {
		if err := platform.SetTimes(tmpPath, plan.AccTime, plan.ModTime); err != nil {
			return written, fail(fmt.Errorf("set times: %w", err))
		}
	}

	if t.cfg.Verify {
		if err := t.verify(ctx, plan.Src, tmpPath, t.buffer(dir)); err != nil {
			return written, fail(err)
		}
	}

	if err := os.Rename(tmpPath, plan.Dst); err != nil {
		return written, fail(fmt.Errorf("rename into place: %w", err))
	}
	committed = true
	t.tmps.remove(tmpPath)

	return written, nil
}

// Cleanup removes any temporary files left behind by transfers that did not
// finish. Transfer already cleans up after itself; this is a last sweep for
// runs torn down mid-flight.
func (t *Transferer) Cleanup() error {
	return t.tmps.cleanup()
}
