package breaker

import (
	"context"
	"errors"
	"net"
	"testing"
)

func TestTrackAll(t *testing.T) {
	tr := TrackAll()
	if tr.Track(nil) {
		t.Error("TrackAll should not classify nil as failure")
	}
	if !tr.Track(errors.New("boom")) {
		t.Error("TrackAll should classify any non-nil error as failure")
	}
}

func TestTrackerTypeOf(t *testing.T) {
	tr := TrackerTypeOf(&net.OpError{}, context.DeadlineExceeded)

	if !tr.Track(&net.OpError{Op: "dial"}) {
		t.Error("expected *net.OpError to match")
	}
	if !tr.Track(context.DeadlineExceeded) {
		t.Error("expected context.DeadlineExceeded to match by type")
	}
	if tr.Track(errors.New("unrelated")) {
		t.Error("unrelated error type should not match")
	}
	if tr.Track(nil) {
		t.Error("nil should never match")
	}
}

func TestTrackerCustomRecoversPanic(t *testing.T) {
	tr := TrackerCustom(func(error) bool {
		panic("predicate exploded")
	}, NoOpLogger{})

	if tr.Track(errors.New("boom")) {
		t.Error("a panicking predicate must be treated as not-a-failure")
	}
}

func TestTrackerCustomDelegates(t *testing.T) {
	tr := TrackerCustom(func(err error) bool {
		return err != nil && err.Error() == "special"
	}, NoOpLogger{})

	if !tr.Track(errors.New("special")) {
		t.Error("expected the custom predicate's true result to propagate")
	}
	if tr.Track(errors.New("ordinary")) {
		t.Error("expected the custom predicate's false result to propagate")
	}
}

func TestTrackerComposition(t *testing.T) {
	isTimeout := TrackerTypeOf(context.DeadlineExceeded)
	isOpError := TrackerTypeOf(&net.OpError{})

	either := TrackerOr(isTimeout, isOpError)
	if !either.Track(context.DeadlineExceeded) {
		t.Error("TrackerOr should match the left operand")
	}
	if !either.Track(&net.OpError{Op: "dial"}) {
		t.Error("TrackerOr should match the right operand")
	}
	if either.Track(errors.New("other")) {
		t.Error("TrackerOr should not match neither operand")
	}

	both := TrackerAnd(TrackAll(), TrackerNot(isTimeout))
	if both.Track(context.DeadlineExceeded) {
		t.Error("TrackerAnd(All, Not(timeout)) should exclude timeouts")
	}
	if !both.Track(errors.New("other")) {
		t.Error("TrackerAnd(All, Not(timeout)) should include non-timeouts")
	}
}

func TestTrackerAndShortCircuits(t *testing.T) {
	calledRight := false
	right := TrackerFunc(func(error) bool {
		calledRight = true
		return true
	})
	left := TrackerFunc(func(error) bool { return false })

	if TrackerAnd(left, right).Track(errors.New("x")) {
		t.Error("expected false")
	}
	if calledRight {
		t.Error("TrackerAnd should short-circuit and never evaluate the right operand")
	}
}
