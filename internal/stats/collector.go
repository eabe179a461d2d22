package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Reader is the read side of a Collector, used by presenters.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
}

// ReadTicker is a Reader that also samples throughput once per second.
type ReadTicker interface {
	Reader
	Tick()
}

// Collector tracks copy statistics using lock-free atomic counters.
// The engine is the only writer; presenters read concurrently.
type Collector struct {
	filesCopied      atomic.Int64
	filesOverwritten atomic.Int64
	filesSkipped     atomic.Int64
	filesDeclined    atomic.Int64
	filesFailed      atomic.Int64
	dirsCreated      atomic.Int64
	bytesCopied      atomic.Int64
	bytesTotal       atomic.Int64

	startTime time.Time
	endTime   atomic.Int64 // unix nanos, 0 until Finish

	// Ring buffer, written only by Tick.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per second
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesCopied      int64 // includes overwritten files
	FilesOverwritten int64
	FilesSkipped     int64 // includes declined files
	FilesDeclined    int64
	FilesFailed      int64
	DirsCreated      int64
	BytesCopied      int64 // written, or would be written in a dry run
	BytesTotal       int64 // source bytes of copied and skipped files
	Elapsed          time.Duration
	Finished         bool
}

// AddFilesCopied records n copied files of the given total size.
func (c *Collector) AddFilesCopied(n, bytes int64) {
	c.filesCopied.Add(n)
	c.bytesCopied.Add(bytes)
	c.bytesTotal.Add(bytes)
}

// AddFilesOverwritten records n copies that replaced an existing file.
// The files must also be recorded with AddFilesCopied.
func (c *Collector) AddFilesOverwritten(n int64) { c.filesOverwritten.Add(n) }

// AddFilesSkipped records n skipped files of the given total source size.
func (c *Collector) AddFilesSkipped(n, bytes int64) {
	c.filesSkipped.Add(n)
	c.bytesTotal.Add(bytes)
}

// AddFilesDeclined records n files the operator chose not to overwrite.
// The files must also be recorded with AddFilesSkipped.
func (c *Collector) AddFilesDeclined(n int64) { c.filesDeclined.Add(n) }

func (c *Collector) AddFilesFailed(n int64) { c.filesFailed.Add(n) }
func (c *Collector) AddDirsCreated(n int64) { c.dirsCreated.Add(n) }

// Finish seals the end time. Calls after the first are no-ops.
func (c *Collector) Finish() {
	c.endTime.CompareAndSwap(0, time.Now().UnixNano())
}

// Finished reports whether Finish has been called.
func (c *Collector) Finished() bool {
	return c.endTime.Load() != 0
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesCopied:      c.filesCopied.Load(),
		FilesOverwritten: c.filesOverwritten.Load(),
		FilesSkipped:     c.filesSkipped.Load(),
		FilesDeclined:    c.filesDeclined.Load(),
		FilesFailed:      c.filesFailed.Load(),
		DirsCreated:      c.dirsCreated.Load(),
		BytesCopied:      c.bytesCopied.Load(),
		BytesTotal:       c.bytesTotal.Load(),
		Elapsed:          c.Elapsed(),
		Finished:         c.Finished(),
	}
}

// Tick snapshots the byte delta into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	currentBytes := c.bytesCopied.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = currentBytes - c.lastBytes
	c.lastBytes = currentBytes
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// Elapsed returns the sealed run duration, or the time since creation while
// the run is still going.
func (c *Collector) Elapsed() time.Duration {
	if end := c.endTime.Load(); end != 0 {
		return time.Unix(0, end).Sub(c.startTime)
	}
	return time.Since(c.startTime)
}

// Throughput returns the average bytes per second over the whole run.
// A zero-length run reports zero.
func (s Snapshot) Throughput() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.BytesCopied) / secs
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"copied=%d overwritten=%d skipped=%d declined=%d failed=%d dirs=%d bytes=%d total=%d",
		s.FilesCopied, s.FilesOverwritten, s.FilesSkipped, s.FilesDeclined,
		s.FilesFailed, s.DirsCreated, s.BytesCopied, s.BytesTotal,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
