package upstream

import (
	"testing"
	"time"
)

func TestBreaker_StartsClosed(t *testing.T) {
	cb := NewCircuitBreaker(3, 2, time.Minute, 0, 0)
	if cb.State() != BreakerClosed {
		t.Errorf("State = %v, want closed", cb.State())
	}
	if err := cb.Allow(); err != nil {
		t.Errorf("Allow() = %v, want nil", err)
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, 2, time.Minute, 0, 0)

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != BreakerClosed {
		t.Fatalf("State after 2 failures = %v, want closed", cb.State())
	}

	cb.RecordFailure()
	if cb.State() != BreakerOpen {
		t.Fatalf("State after 3 failures = %v, want open", cb.State())
	}
	if err := cb.Allow(); err != ErrBreakerOpen {
		t.Errorf("Allow() = %v, want ErrBreakerOpen", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, 2, time.Minute, 0, 0)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	if cb.State() != BreakerClosed {
		t.Errorf("State = %v, want closed (count was reset)", cb.State())
	}
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 2, 10*time.Millisecond, 0, 0)

	cb.RecordFailure()
	if cb.State() != BreakerOpen {
		t.Fatalf("State = %v, want open", cb.State())
	}

	time.Sleep(20 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow() after timeout = %v, want nil (half-open probe)", err)
	}
	if cb.State() != BreakerHalfOpen {
		t.Fatalf("State = %v, want half-open", cb.State())
	}

	// Two successes close the breaker again.
	cb.RecordSuccess()
	cb.RecordSuccess()
	if cb.State() != BreakerClosed {
		t.Errorf("State = %v, want closed", cb.State())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 2, 10*time.Millisecond, 0, 0)

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatal(err)
	}

	cb.RecordFailure()
	if cb.State() != BreakerOpen {
		t.Errorf("State = %v, want open", cb.State())
	}
	if err := cb.Allow(); err != ErrBreakerOpen {
		t.Errorf("Allow() = %v, want ErrBreakerOpen", err)
	}
}

func TestBreaker_OpensOnErrorRate(t *testing.T) {
	// Consecutive threshold is far out of reach; only the rate can trip.
	cb := NewCircuitBreaker(100, 2, time.Minute, 0.5, time.Minute)

	// Alternate failures and successes: consecutive count never passes 1,
	// but the window accumulates a 50% error rate.
	for i := 0; i < 5; i++ {
		cb.RecordFailure()
		cb.RecordSuccess()
	}
	if cb.State() != BreakerClosed {
		t.Fatalf("State at the sample minimum = %v, want closed", cb.State())
	}

	cb.RecordFailure()
	if cb.State() != BreakerOpen {
		t.Fatalf("State = %v, want open once the window rate reaches 0.5", cb.State())
	}
}

func TestBreaker_ErrorRateNeedsMinimumSamples(t *testing.T) {
	cb := NewCircuitBreaker(100, 2, time.Minute, 0.5, time.Minute)

	// 100% failure rate but below the sample minimum: stays closed.
	for i := 0; i < minErrorRateSamples-1; i++ {
		cb.RecordFailure()
	}
	if cb.State() != BreakerClosed {
		t.Errorf("State = %v, want closed below the sample minimum", cb.State())
	}
}

func TestBreaker_ZeroRateConfigDisablesRateTripping(t *testing.T) {
	cb := NewCircuitBreaker(100, 2, time.Minute, 0, time.Minute)

	for i := 0; i < 50; i++ {
		cb.RecordFailure()
		cb.RecordSuccess()
	}
	if cb.State() != BreakerClosed {
		t.Errorf("State = %v, want closed with rate tripping disabled", cb.State())
	}
}

func TestBreaker_ErrorRate(t *testing.T) {
	cb := NewCircuitBreaker(100, 2, time.Minute, 0.9, time.Minute)

	rate, total := cb.ErrorRate()
	if rate != 0 || total != 0 {
		t.Errorf("ErrorRate() = %v, %d before any calls", rate, total)
	}

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordSuccess()
	cb.RecordSuccess()

	rate, total = cb.ErrorRate()
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if rate != 0.25 {
		t.Errorf("rate = %v, want 0.25", rate)
	}
}

func TestBreakerState_String(t *testing.T) {
	tests := []struct {
		state BreakerState
		want  string
	}{
		{BreakerClosed, "closed"},
		{BreakerOpen, "open"},
		{BreakerHalfOpen, "half-open"},
		{BreakerState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.state, got, tt.want)
		}
	}
}
