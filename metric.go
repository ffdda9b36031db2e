package breaker

import "time"

// Metric is a derived, immutable snapshot of a Window's contents at the
// moment it was computed.
type Metric struct {
	TotalCount    uint64
	FailureCount  uint64
	SlowCount     uint64
	TotalDuration time.Duration
}

// FailureRate is FailureCount/TotalCount, or 0 when the window is empty.
func (m Metric) FailureRate() float64 {
	if m.TotalCount == 0 {
		return 0
	}
	return float64(m.FailureCount) / float64(m.TotalCount)
}

// AvgDuration is TotalDuration/TotalCount, or 0 when the window is empty.
func (m Metric) AvgDuration() time.Duration {
	if m.TotalCount == 0 {
		return 0
	}
	return m.TotalDuration / time.Duration(m.TotalCount)
}

// SlowRate is SlowCount/TotalCount, or 0 when the window is empty.
func (m Metric) SlowRate() float64 {
	if m.TotalCount == 0 {
		return 0
	}
	return float64(m.SlowCount) / float64(m.TotalCount)
}
