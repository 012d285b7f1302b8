package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time) {
	breaker := NewCircuitBreaker(cfg)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	breaker.now = func() time.Time { return now }
	return breaker, &now
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	breaker, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 3, OpenTimeout: 10 * time.Second, HalfOpenMaxReq: 1})

	for i := 0; i < 2; i++ {
		if err := breaker.Allow(); err != nil {
			t.Fatalf("closed breaker must allow: %v", err)
		}
		breaker.RecordFailure()
	}
	if got := breaker.State(); got != CircuitStateClosed {
		t.Fatalf("unexpected state before threshold: got=%s", got)
	}

	breaker.RecordFailure()
	if got := breaker.State(); got != CircuitStateOpen {
		t.Fatalf("unexpected state after threshold: got=%s", got)
	}
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker must reject, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureStreak(t *testing.T) {
	t.Parallel()

	breaker, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: 10 * time.Second, HalfOpenMaxReq: 1})

	breaker.RecordFailure()
	breaker.RecordSuccess()
	breaker.RecordFailure()

	if got := breaker.State(); got != CircuitStateClosed {
		t.Fatalf("interleaved success must reset the streak: got=%s", got)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	t.Parallel()

	breaker, now := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: 10 * time.Second, HalfOpenMaxReq: 1})

	breaker.RecordFailure()
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open rejection, got %v", err)
	}

	*now = now.Add(11 * time.Second)
	if err := breaker.Allow(); err != nil {
		t.Fatalf("half-open probe must be allowed: %v", err)
	}
	breaker.RecordSuccess()

	if got := breaker.State(); got != CircuitStateClosed {
		t.Fatalf("breaker must close after successful probe: got=%s", got)
	}
	if err := breaker.Allow(); err != nil {
		t.Fatalf("closed breaker must allow: %v", err)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	breaker, now := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: 10 * time.Second, HalfOpenMaxReq: 1})

	breaker.RecordFailure()
	*now = now.Add(11 * time.Second)
	if err := breaker.Allow(); err != nil {
		t.Fatalf("half-open probe must be allowed: %v", err)
	}
	breaker.RecordFailure()

	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("failed probe must reopen the breaker, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	t.Parallel()

	breaker, now := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: 10 * time.Second, HalfOpenMaxReq: 2})

	breaker.RecordFailure()
	*now = now.Add(11 * time.Second)

	if err := breaker.Allow(); err != nil {
		t.Fatalf("first probe: %v", err)
	}
	if err := breaker.Allow(); err != nil {
		t.Fatalf("second probe: %v", err)
	}
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("probe beyond the half-open limit must be rejected, got %v", err)
	}
}

func TestNormalizeCircuitBreakerConfig(t *testing.T) {
	t.Parallel()

	got := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{})
	want := DefaultCircuitBreakerConfig()
	if got.FailureThreshold != want.FailureThreshold || got.OpenTimeout != want.OpenTimeout || got.HalfOpenMaxReq != want.HalfOpenMaxReq {
		t.Fatalf("unexpected normalized config: %+v", got)
	}
}
