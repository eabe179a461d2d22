package engine

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"

	"github.com/bamsammich/dcp/internal/platform"
)

// HashFile computes the BLAKE3 hash of the file at path, streaming it through
// buf, and returns the hex-encoded digest.
func HashFile(ctx context.Context, path string, buf []byte) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := platform.CopyReadWrite(ctx, h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
