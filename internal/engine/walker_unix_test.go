//go:build unix

package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestWalkerRejectsFifo(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, unix.Mkfifo(filepath.Join(src, "pipe"), 0o644))
	writeFile(t, filepath.Join(src, "plain.txt"), "p")

	kind, err := Classify(filepath.Join(src, "pipe"))
	require.NoError(t, err)
	require.Equal(t, Unsupported, kind)

	w, err := ResolveTargets(src, filepath.Join(t.TempDir(), "dst"), WalkOptions{})
	require.NoError(t, err)
	plans := walkAll(t, w)

	require.Equal(t, []string{".", "pipe", "plain.txt"}, rels(plans))
	require.ErrorIs(t, plans[1].Err, ErrUnsupportedEntry)
}
