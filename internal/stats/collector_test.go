package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	const goroutines = 100
	const opsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range opsPerGoroutine {
				c.AddFilesCopied(1, 256)
				c.AddFilesOverwritten(1)
				c.AddFilesSkipped(1, 16)
				c.AddFilesDeclined(1)
				c.AddFilesFailed(1)
				c.AddDirsCreated(1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	expected := int64(goroutines * opsPerGoroutine)
	assert.Equal(t, expected, s.FilesCopied)
	assert.Equal(t, expected, s.FilesOverwritten)
	assert.Equal(t, expected, s.FilesSkipped)
	assert.Equal(t, expected, s.FilesDeclined)
	assert.Equal(t, expected, s.FilesFailed)
	assert.Equal(t, expected, s.DirsCreated)
	assert.Equal(t, expected*256, s.BytesCopied)
	assert.Equal(t, expected*(256+16), s.BytesTotal)
}

func TestSkippedBytesCountTowardTotalOnly(t *testing.T) {
	c := NewCollector()
	c.AddFilesSkipped(1, 1)
	c.AddFilesCopied(1, 2)

	s := c.Snapshot()
	assert.Equal(t, int64(1), s.FilesCopied)
	assert.Equal(t, int64(1), s.FilesSkipped)
	assert.Equal(t, int64(2), s.BytesCopied)
	assert.Equal(t, int64(3), s.BytesTotal)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		FilesCopied:      8,
		FilesOverwritten: 2,
		FilesSkipped:     3,
		FilesDeclined:    1,
		FilesFailed:      1,
		DirsCreated:      4,
		BytesCopied:      4096,
		BytesTotal:       5000,
	}
	expected := "copied=8 overwritten=2 skipped=3 declined=1 failed=1 dirs=4 bytes=4096 total=5000"
	assert.Equal(t, expected, s.String())
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatBytes(tt.input))
		})
	}
}

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.startTime.IsZero())
	assert.False(t, c.Finished())
	assert.InDelta(t, 0, c.Elapsed().Seconds(), 1)
}

func TestFinishSealsElapsed(t *testing.T) {
	c := NewCollector()
	time.Sleep(5 * time.Millisecond)
	c.Finish()
	require.True(t, c.Finished())

	first := c.Elapsed()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, first, c.Elapsed())

	// A second Finish does not move the end time.
	c.Finish()
	assert.Equal(t, first, c.Elapsed())
	assert.True(t, c.Snapshot().Finished)
}

func TestThroughput(t *testing.T) {
	s := Snapshot{BytesCopied: 1000, Elapsed: 2 * time.Second}
	assert.InDelta(t, 500.0, s.Throughput(), 0.01)
}

func TestThroughputZeroDuration(t *testing.T) {
	s := Snapshot{BytesCopied: 1000}
	assert.Equal(t, 0.0, s.Throughput())
}

func TestRollingSpeed(t *testing.T) {
	tests := []struct {
		name    string
		samples []int64 // bytes copied before each Tick
		window  int
		want    float64
	}{
		{"no samples", nil, 5, 0},
		{"steady", []int64{1000, 1000, 1000, 1000, 1000}, 5, 1000},
		{"window shorter than history", []int64{4000, 100, 300}, 2, 200},
		{"window longer than history", []int64{500, 500}, 10, 500},
		{"idle seconds count", []int64{900, 0, 0}, 3, 300},
		{"zero window", []int64{100}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector()
			for _, n := range tt.samples {
				if n > 0 {
					c.AddFilesCopied(1, n)
				}
				c.Tick()
			}
			assert.InDelta(t, tt.want, c.RollingSpeed(tt.window), 0.01)
		})
	}
}

func TestRollingSpeedRingWraps(t *testing.T) {
	c := NewCollector()
	for i := range ringSize + 10 {
		c.AddFilesCopied(1, int64(100+i%2*100)) // alternating 100, 200
		c.Tick()
	}
	assert.InDelta(t, 150.0, c.RollingSpeed(ringSize), 0.01)
}

func TestSnapshotIncludesElapsed(t *testing.T) {
	c := NewCollector()
	time.Sleep(10 * time.Millisecond)
	s := c.Snapshot()
	assert.Greater(t, s.Elapsed, time.Duration(0))
}
