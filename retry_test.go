package breaker

import (
	"errors"
	"testing"
	"time"
)

func TestRetryNeverIsFarFuture(t *testing.T) {
	openedAt := time.Now()
	next := RetryNever().NextAttempt(openedAt, 0)
	if !next.After(openedAt.Add(100 * 365 * 24 * time.Hour)) {
		t.Errorf("RetryNever's NextAttempt = %v, want far beyond openedAt", next)
	}
}

func TestRetryAlwaysIsImmediate(t *testing.T) {
	openedAt := time.Now()
	if got := RetryAlways().NextAttempt(openedAt, 3); !got.Equal(openedAt) {
		t.Errorf("RetryAlways().NextAttempt() = %v, want %v", got, openedAt)
	}
}

func TestRetryCooldownNoJitter(t *testing.T) {
	openedAt := time.Now()
	clock := RetryCooldown(30*time.Second, 0)
	if got := clock.NextAttempt(openedAt, 0); !got.Equal(openedAt.Add(30 * time.Second)) {
		t.Errorf("NextAttempt = %v, want openedAt+30s", got)
	}
}

func TestRetryCooldownJitterBounded(t *testing.T) {
	openedAt := time.Now()
	clock := RetryCooldown(10*time.Second, 0.2)
	lo := openedAt.Add(8 * time.Second)
	hi := openedAt.Add(12 * time.Second)
	for i := 0; i < 50; i++ {
		got := clock.NextAttempt(openedAt, 0)
		if got.Before(lo) || got.After(hi) {
			t.Fatalf("NextAttempt = %v, want within [%v, %v]", got, lo, hi)
		}
	}
}

func TestRetryBackoffGrowsAndCaps(t *testing.T) {
	openedAt := time.Now()
	clock := RetryBackoff(1*time.Second, 2.0, 10*time.Second, 0)

	if got := clock.NextAttempt(openedAt, 0); !got.Equal(openedAt.Add(1 * time.Second)) {
		t.Errorf("reopens=0: NextAttempt = %v, want openedAt+1s", got)
	}
	if got := clock.NextAttempt(openedAt, 2); !got.Equal(openedAt.Add(4 * time.Second)) {
		t.Errorf("reopens=2: NextAttempt = %v, want openedAt+4s", got)
	}
	if got := clock.NextAttempt(openedAt, 10); !got.Equal(openedAt.Add(10 * time.Second)) {
		t.Errorf("reopens=10: NextAttempt = %v, want capped at openedAt+10s", got)
	}
}

func TestRetryCooldownRejectsJitterOutOfRange(t *testing.T) {
	for _, j := range []float64{-0.1, 1.1} {
		v, ok := RetryCooldown(time.Second, j).(configValidator)
		if !ok {
			t.Fatal("retryCooldown must implement configValidator")
		}
		if err := v.validateConfig(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("jitter=%v: validateConfig() = %v, want ErrInvalidConfig", j, err)
		}
	}
}

func TestRetryBackoffRejectsJitterOutOfRange(t *testing.T) {
	v, ok := RetryBackoff(time.Second, 2.0, 10*time.Second, 1.5).(configValidator)
	if !ok {
		t.Fatal("retryBackoff must implement configValidator")
	}
	if err := v.validateConfig(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("validateConfig() = %v, want ErrInvalidConfig", err)
	}
}
