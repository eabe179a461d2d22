package platform

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkRecorder records the size of every Write call.
type chunkRecorder struct {
	bytes.Buffer
	writes []int
}

func (c *chunkRecorder) Write(p []byte) (int, error) {
	c.writes = append(c.writes, len(p))
	return c.Buffer.Write(p)
}

type failingWriter struct {
	after int64
	n     int64
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.n+int64(len(p)) > f.after {
		return 0, errors.New("disk full")
	}
	f.n += int64(len(p))
	return len(p), nil
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

type failingReader struct {
	data []byte
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, errors.New("input/output error")
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestCopyReadWriteBasic(t *testing.T) {
	data := []byte("hello, dcp!")
	var out bytes.Buffer

	n, err := CopyReadWrite(context.Background(), &out, bytes.NewReader(data), make([]byte, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, data, out.Bytes())
}

func TestCopyReadWriteBoundedChunks(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 1000)
	out := &chunkRecorder{}

	_, err := CopyReadWrite(context.Background(), out, bytes.NewReader(data), make([]byte, 64))
	require.NoError(t, err)
	assert.Equal(t, data, out.Bytes())
	for _, w := range out.writes {
		assert.LessOrEqual(t, w, 64)
	}
	assert.Len(t, out.writes, 16) // 15 full chunks + 40 bytes
}

func TestCopyReadWriteEmpty(t *testing.T) {
	out := &chunkRecorder{}

	n, err := CopyReadWrite(context.Background(), out, bytes.NewReader(nil), make([]byte, 64))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, out.writes)
}

func TestCopyReadWriteBufferSizes(t *testing.T) {
	data := make([]byte, 300*1024)
	_, err := rand.Read(data)
	require.NoError(t, err)

	for _, size := range []int{1, 64, 1 << 20} {
		t.Run(strconv.Itoa(size), func(t *testing.T) {
			var out bytes.Buffer
			n, err := CopyReadWrite(context.Background(), &out, bytes.NewReader(data), make([]byte, size))
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), n)
			assert.Equal(t, data, out.Bytes())
		})
	}
}

func TestCopyReadWriteWriteError(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 100)

	n, err := CopyReadWrite(context.Background(), &failingWriter{after: 50}, bytes.NewReader(data), make([]byte, 10))
	require.Error(t, err)
	assert.Equal(t, int64(50), n)

	var ce *CopyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "write", ce.Op)
	assert.Equal(t, int64(50), ce.Offset)
	assert.Contains(t, err.Error(), "offset 50")
}

func TestCopyReadWriteShortWrite(t *testing.T) {
	_, err := CopyReadWrite(context.Background(), shortWriter{}, bytes.NewReader([]byte("abcd")), make([]byte, 4))
	require.ErrorIs(t, err, ErrShortWrite)
}

func TestCopyReadWriteReadError(t *testing.T) {
	var out bytes.Buffer
	src := &failingReader{data: []byte("0123456789")}

	n, err := CopyReadWrite(context.Background(), &out, src, make([]byte, 4))
	require.Error(t, err)
	assert.Equal(t, int64(10), n)

	var ce *CopyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "read", ce.Op)
	assert.Equal(t, int64(10), ce.Offset)
}

func TestCopyReadWriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := CopyReadWrite(ctx, &out, bytes.NewReader([]byte("data")), make([]byte, 4))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

func TestCopyReadWriteEmptyBuffer(t *testing.T) {
	_, err := CopyReadWrite(context.Background(), io.Discard, bytes.NewReader([]byte("x")), nil)
	require.Error(t, err)
}

func TestCopyReadWriteFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	// 4 MiB, larger than the buffer.
	data := make([]byte, 4*1024*1024)
	_, err := rand.Read(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	srcFd, err := os.Open(src)
	require.NoError(t, err)
	defer srcFd.Close()

	dstFd, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	Preallocate(dstFd, int64(len(data)))

	n, err := CopyReadWrite(context.Background(), dstFd, srcFd, make([]byte, 1<<20))
	require.NoError(t, err)
	require.NoError(t, dstFd.Close())
	assert.Equal(t, int64(len(data)), n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestPreferredBlockSize(t *testing.T) {
	assert.Positive(t, PreferredBlockSize(t.TempDir()))
	assert.Equal(t, DefaultBufferSize, PreferredBlockSize(filepath.Join(t.TempDir(), "missing")))
}

func TestSetTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, SetTimes(path, mtime, mtime))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestSetTimesMissing(t *testing.T) {
	now := time.Now()
	assert.Error(t, SetTimes(filepath.Join(t.TempDir(), "missing"), now, now))
}

func TestPreallocateKeepsSize(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "f"))
	require.NoError(t, err)
	defer f.Close()

	Preallocate(f, 1<<20)
	Preallocate(f, 0)
	Preallocate(f, -1)

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
