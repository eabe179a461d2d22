package engine

import (
	"context"
	"fmt"
)

// VerifyError records a checksum mismatch between a source and the copy
// written for it.
type VerifyError struct {
	Path    string
	SrcHash string
	DstHash string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s: source %s, copy %s", e.Path, short(e.SrcHash), short(e.DstHash))
}

func (e *VerifyError) Unwrap() error { return ErrVerifyMismatch }

// verify re-reads src and the freshly written copy and compares their BLAKE3
// digests.
func (t *Transferer) verify(ctx context.Context, src, copied string, buf []byte) error {
	srcHash, err := HashFile(ctx, src, buf)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	dstHash, err := HashFile(ctx, copied, buf)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if srcHash != dstHash {
		return &VerifyError{Path: src, SrcHash: srcHash, DstHash: dstHash}
	}
	return nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
