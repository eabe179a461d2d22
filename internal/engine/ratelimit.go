package engine

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

const maxBurst = 1 << 20

// NewBWLimiter returns a limiter admitting bytesPerSec bytes per second. The
// burst never exceeds one second of traffic or 1 MiB, whichever is smaller.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(bytesPerSec), int(min(bytesPerSec, maxBurst)))
}

// throttledReader charges every byte it returns against a limiter.
type throttledReader struct {
	ctx context.Context
	src io.Reader
	lim *rate.Limiter
}

// throttle wraps src so reads are paced by lim. A nil lim returns src.
func throttle(ctx context.Context, src io.Reader, lim *rate.Limiter) io.Reader {
	if lim == nil {
		return src
	}
	return &throttledReader{ctx: ctx, src: src, lim: lim}
}

func (t *throttledReader) Read(p []byte) (int, error) {
	// WaitN fails outright for more than one burst.
	if burst := t.lim.Burst(); burst > 0 && len(p) > burst {
		p = p[:burst]
	}
	n, err := t.src.Read(p)
	if n == 0 {
		return 0, err
	}
	if werr := t.lim.WaitN(t.ctx, n); werr != nil {
		return n, werr
	}
	return n, err
}
