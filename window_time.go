package breaker

import (
	"fmt"
	"sync"
	"time"
)

// timeBucket aggregates every record whose timestamp floors to the same
// second-of-epoch.
type timeBucket struct {
	epoch    int64 // seconds since epoch this bucket represents
	total    uint64
	failure  uint64
	slow     uint64
	duration time.Duration
}

// TimeWindow aggregates records from the last N seconds in a ring of N
// one-second buckets, advancing stale buckets lazily on Record; Metric
// skips buckets outside the window without clearing them.
// Buckets are addressed by epoch directly (epoch % N) rather than by a
// rotating head index, so a record with a future timestamp and a record
// arriving into a bucket that's aged out since the last touch both fall
// out of the same modular-indexing logic instead of needing special cases.
type TimeWindow struct {
	mu sync.Mutex

	buckets  []timeBucket
	capacity int64 // window size in seconds

	now func() time.Time // overridable for tests
}

// NewTimeWindow creates a TimeWindow covering the most recent capacitySec
// seconds. capacitySec must be > 0.
func NewTimeWindow(capacitySec int) (*TimeWindow, error) {
	if capacitySec <= 0 {
		return nil, fmt.Errorf("%w: TimeWindow capacity must be positive, got %d", ErrInvalidConfig, capacitySec)
	}
	return &TimeWindow{
		buckets:  make([]timeBucket, capacitySec),
		capacity: int64(capacitySec),
		now:      time.Now,
	}, nil
}

func (w *TimeWindow) bucketFor(epoch int64) *timeBucket {
	idx := epoch % w.capacity
	if idx < 0 {
		idx += w.capacity
	}
	b := &w.buckets[idx]
	if b.epoch != epoch {
		// Either unused or stale: advance it to represent this epoch.
		*b = timeBucket{epoch: epoch}
	}
	return b
}

// Record implements Window. The record is bucketed by the floor of its own
// timestamp, so a record that is slightly ahead of wall-clock now (minor
// non-monotonicity, or a caller-supplied timestamp) still lands in a real
// bucket; Metric only sums buckets within the live window.
func (w *TimeWindow) Record(r Record) {
	w.mu.Lock()
	defer w.mu.Unlock()

	epoch := r.Timestamp.Unix()
	nowSec := w.now().Unix()
	if epoch < nowSec-w.capacity+1 {
		// Older than the window can represent: would collide with and
		// clobber a live bucket's slot. Spec requires these be dropped
		// silently rather than corrupting an unrelated epoch's data.
		return
	}

	b := w.bucketFor(epoch)

	b.total++
	if !r.Success {
		b.failure++
	}
	if r.Slow {
		b.slow++
	}
	b.duration += r.Duration
}

// Metric implements Window.
func (w *TimeWindow) Metric() Metric {
	w.mu.Lock()
	defer w.mu.Unlock()

	nowSec := w.now().Unix()
	cutoff := nowSec - w.capacity + 1

	var m Metric
	for i := range w.buckets {
		b := &w.buckets[i]
		if b.total == 0 {
			continue
		}
		if b.epoch < cutoff || b.epoch > nowSec {
			continue
		}
		m.TotalCount += b.total
		m.FailureCount += b.failure
		m.SlowCount += b.slow
		m.TotalDuration += b.duration
	}
	return m
}

// Reset implements Window.
func (w *TimeWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.buckets {
		w.buckets[i] = timeBucket{}
	}
}
