package breaker

// Window is a sliding aggregator over recent call outcomes. CountWindow is
// constant-time for Record and Metric. TimeWindow is constant-time for
// Record, but its Metric scans all N buckets, so it is O(N) in the window
// size.
type Window interface {
	// Record folds an outcome into the window.
	Record(r Record)
	// Metric computes the current aggregate over the window's live
	// contents. It never returns NaN: an empty window reports all zeros.
	Metric() Metric
	// Reset clears every bucket/record and running sum.
	Reset()
}
