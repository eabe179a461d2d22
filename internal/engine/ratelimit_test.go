package engine

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBWLimiterBurst(t *testing.T) {
	tests := []struct {
		rate  int64
		burst int
	}{
		{1, 1},
		{1024, 1024},
		{maxBurst, maxBurst},
		{64 * maxBurst, maxBurst},
	}
	for _, tt := range tests {
		lim := NewBWLimiter(tt.rate)
		assert.Equal(t, tt.burst, lim.Burst(), "rate %d", tt.rate)
	}
}

func TestThrottleNilLimiter(t *testing.T) {
	src := strings.NewReader("plain")
	assert.Same(t, src, throttle(context.Background(), src, nil))
}

func TestThrottledReader(t *testing.T) {
	t.Parallel()

	t.Run("passes data through unchanged", func(t *testing.T) {
		t.Parallel()
		data := bytes.Repeat([]byte{0x5a}, 3*4096+7)
		r := throttle(context.Background(), bytes.NewReader(data), NewBWLimiter(64<<20))

		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("paces reads to the limit", func(t *testing.T) {
		t.Parallel()
		// 8 KiB at 4 KiB/s: the first burst is free, the rest waits ~1s.
		data := make([]byte, 8*1024)
		r := throttle(context.Background(), bytes.NewReader(data), NewBWLimiter(4*1024))

		start := time.Now()
		n, err := io.Copy(io.Discard, r)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), n)
		assert.Greater(t, time.Since(start), 600*time.Millisecond)
	})

	t.Run("never returns more than one burst", func(t *testing.T) {
		t.Parallel()
		lim := NewBWLimiter(1 << 30)
		lim.SetBurst(512)
		r := throttle(context.Background(), bytes.NewReader(make([]byte, 2048)), lim)

		n, err := r.Read(make([]byte, 2048))
		require.NoError(t, err)
		assert.Equal(t, 512, n)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := throttle(ctx, bytes.NewReader(make([]byte, 1<<20)), NewBWLimiter(1024))

		buf := make([]byte, 1024)
		var err error
		for i := 0; i < 10 && err == nil; i++ {
			_, err = r.Read(buf)
		}
		require.ErrorIs(t, err, context.Canceled)
	})
}
