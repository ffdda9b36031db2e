package breaker

import (
	"testing"
	"time"
)

func TestNewCountWindowRejectsNonPositiveCapacity(t *testing.T) {
	if _, err := NewCountWindow(0); err == nil {
		t.Fatal("expected an error for zero capacity")
	}
	if _, err := NewCountWindow(-1); err == nil {
		t.Fatal("expected an error for negative capacity")
	}
}

func TestCountWindowAccumulates(t *testing.T) {
	w, err := NewCountWindow(5)
	if err != nil {
		t.Fatal(err)
	}

	w.Record(Record{Success: true, Duration: 10 * time.Millisecond})
	w.Record(Record{Success: false, Slow: true, Duration: 100 * time.Millisecond})
	w.Record(Record{Success: true, Duration: 20 * time.Millisecond})

	m := w.Metric()
	if m.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", m.TotalCount)
	}
	if m.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", m.FailureCount)
	}
	if m.SlowCount != 1 {
		t.Errorf("SlowCount = %d, want 1", m.SlowCount)
	}
	if m.TotalDuration != 130*time.Millisecond {
		t.Errorf("TotalDuration = %v, want 130ms", m.TotalDuration)
	}
}

func TestCountWindowEvictsOldestOnWrap(t *testing.T) {
	w, err := NewCountWindow(3)
	if err != nil {
		t.Fatal(err)
	}

	// Fill with three failures, then wrap with three successes. Running
	// sums must reflect only the live window, not every record ever seen.
	for i := 0; i < 3; i++ {
		w.Record(Record{Success: false, Duration: time.Millisecond})
	}
	if m := w.Metric(); m.FailureCount != 3 {
		t.Fatalf("after filling: FailureCount = %d, want 3", m.FailureCount)
	}

	for i := 0; i < 3; i++ {
		w.Record(Record{Success: true, Duration: time.Millisecond})
	}

	m := w.Metric()
	if m.TotalCount != 3 {
		t.Errorf("TotalCount after wrap = %d, want 3", m.TotalCount)
	}
	if m.FailureCount != 0 {
		t.Errorf("FailureCount after full wrap = %d, want 0", m.FailureCount)
	}
}

func TestCountWindowReset(t *testing.T) {
	w, err := NewCountWindow(3)
	if err != nil {
		t.Fatal(err)
	}
	w.Record(Record{Success: false, Duration: time.Millisecond})
	w.Reset()

	m := w.Metric()
	if m.TotalCount != 0 || m.FailureCount != 0 {
		t.Errorf("Metric after Reset = %+v, want all zero", m)
	}

	// The window must be fully usable again, not just zeroed.
	w.Record(Record{Success: true, Duration: time.Millisecond})
	if m := w.Metric(); m.TotalCount != 1 {
		t.Errorf("TotalCount after reset+record = %d, want 1", m.TotalCount)
	}
}
