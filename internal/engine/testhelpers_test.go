package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dcp/internal/event"
)

// createTestTree populates root with:
//
//	root.txt          (17 bytes)
//	big.bin           (320KB)
//	empty/            (empty directory)
//	sub/mid.txt       (19 bytes)
//	sub/deep/leaf.txt (17 bytes)
//	sub/zero.txt      (0 bytes)
func createTestTree(t *testing.T, root string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	writeFile(t, filepath.Join(root, "root.txt"), "root file content")
	writeFile(t, filepath.Join(root, "big.bin"), strings.Repeat("ABCDEFGHIJKLMNOP", 20000))
	writeFile(t, filepath.Join(root, "sub", "mid.txt"), "middle file content")
	writeFile(t, filepath.Join(root, "sub", "deep", "leaf.txt"), "leaf file content")
	writeFile(t, filepath.Join(root, "sub", "zero.txt"), "")
}

// testTreeBytes is the total size of the files created by createTestTree.
const testTreeBytes = 17 + 320000 + 19 + 17

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// snapshotTree maps every entry under root to its content ("/" for
// directories), keyed by slash-separated relative path.
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			out[rel] = "/"
			return nil
		}
		out[rel] = readFile(t, path)
		return nil
	})
	require.NoError(t, err)
	return out
}

// collectEvents creates a buffered event channel that records all events.
// The getter closes the channel and waits for the drain goroutine; it may be
// called at most once.
func collectEvents(t *testing.T) (chan<- event.Event, func() []event.Event) {
	t.Helper()
	ch := make(chan event.Event, 4096)
	var collected []event.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			collected = append(collected, ev)
		}
	}()
	var once sync.Once
	drain := func() {
		once.Do(func() { close(ch) })
		<-done
	}
	t.Cleanup(drain)
	return ch, func() []event.Event {
		drain()
		return collected
	}
}

// findTmpFiles returns any .dcp-tmp files found under root.
func findTmpFiles(t *testing.T, root string) []string {
	t.Helper()
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasSuffix(d.Name(), ".dcp-tmp") {
			found = append(found, path)
		}
		return nil
	})
	require.NoError(t, err)
	return found
}

// confirmAll answers every prompt with answer and counts the questions.
func confirmAll(answer bool, asked *int) ConfirmFunc {
	return func(_ context.Context, _ string) (bool, error) {
		*asked++
		return answer, nil
	}
}
