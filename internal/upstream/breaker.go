package upstream

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by Allow while the breaker is rejecting calls.
var ErrBreakerOpen = errors.New("upstream: circuit breaker is open")

// BreakerState represents the current state of the circuit breaker.
type BreakerState int

const (
	// BreakerClosed allows all requests through. Failures are counted.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects all requests immediately.
	BreakerOpen
	// BreakerHalfOpen allows probe requests through.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// minErrorRateSamples is the minimum number of requests in a window before
// the error rate threshold is evaluated. This prevents tripping on very
// few requests (e.g. 1 failure out of 1 total = 100% but not meaningful).
const minErrorRateSamples = 10

// CircuitBreaker guards the upstream origin with the classic three-state
// pattern: Closed → Open on consecutive failures, Open → HalfOpen after a
// cool-down, HalfOpen → Closed after consecutive successes. It also trips
// on the error rate within a tumbling window. Safe for concurrent use.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            BreakerState
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
	timeout          time.Duration
	openedAt         time.Time

	// Error rate tracking (tumbling window).
	errorRateThreshold float64
	errorRateWindow    time.Duration
	windowStart        time.Time
	windowTotal        int
	windowFailures     int
}

// NewCircuitBreaker creates a breaker that opens after failureThreshold
// consecutive failures, stays open for timeout, and closes again after
// successThreshold consecutive successes in half-open. When
// errorRateThreshold (0.0–1.0) and errorRateWindow are both set, the
// breaker also opens once the error rate within the window reaches the
// threshold; either being zero disables rate-based tripping.
func NewCircuitBreaker(failureThreshold, successThreshold int, timeout time.Duration,
	errorRateThreshold float64, errorRateWindow time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 5
	}
	if successThreshold < 1 {
		successThreshold = 2
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CircuitBreaker{
		state:              BreakerClosed,
		failureThreshold:   failureThreshold,
		successThreshold:   successThreshold,
		timeout:            timeout,
		errorRateThreshold: errorRateThreshold,
		errorRateWindow:    errorRateWindow,
		windowStart:        time.Now(),
	}
}

// Allow reports whether a request may proceed. Returns ErrBreakerOpen while
// the circuit is open.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == BreakerOpen {
		if time.Since(cb.openedAt) <= cb.timeout {
			return ErrBreakerOpen
		}
		cb.state = BreakerHalfOpen
		cb.successes = 0
	}
	return nil
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		cb.failures = 0
		cb.recordWindowCall(false)
	case BreakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.state = BreakerClosed
			cb.failures = 0
			cb.successes = 0
			cb.resetWindow()
		}
	}
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		cb.failures++
		cb.recordWindowCall(true)

		// Trip on consecutive failure threshold OR error rate threshold.
		if cb.failures >= cb.failureThreshold || cb.errorRateExceeded() {
			cb.state = BreakerOpen
			cb.openedAt = time.Now()
			cb.resetWindow()
		}
	case BreakerHalfOpen:
		// Any failure in half-open immediately reopens.
		cb.state = BreakerOpen
		cb.openedAt = time.Now()
		cb.successes = 0
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == BreakerOpen && time.Since(cb.openedAt) > cb.timeout {
		cb.state = BreakerHalfOpen
		cb.successes = 0
	}
	return cb.state
}

// ErrorRate returns the current error rate and total requests in the window.
func (cb *CircuitBreaker) ErrorRate() (rate float64, total int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeResetWindow()
	if cb.windowTotal == 0 {
		return 0, 0
	}
	return float64(cb.windowFailures) / float64(cb.windowTotal), cb.windowTotal
}

// recordWindowCall tracks a call in the tumbling window. Must be called
// with the lock held.
func (cb *CircuitBreaker) recordWindowCall(isFailure bool) {
	if cb.errorRateWindow <= 0 {
		return
	}
	cb.maybeResetWindow()
	cb.windowTotal++
	if isFailure {
		cb.windowFailures++
	}
}

// maybeResetWindow resets the tumbling window once it has expired. Must be
// called with the lock held.
func (cb *CircuitBreaker) maybeResetWindow() {
	if cb.errorRateWindow <= 0 {
		return
	}
	if time.Since(cb.windowStart) > cb.errorRateWindow {
		cb.windowStart = time.Now()
		cb.windowTotal = 0
		cb.windowFailures = 0
	}
}

// resetWindow clears the window counters. Must be called with the lock held.
func (cb *CircuitBreaker) resetWindow() {
	cb.windowStart = time.Now()
	cb.windowTotal = 0
	cb.windowFailures = 0
}

// errorRateExceeded reports whether the error rate in the current window
// reaches the threshold. Requires at least minErrorRateSamples requests.
// Must be called with the lock held.
func (cb *CircuitBreaker) errorRateExceeded() bool {
	if cb.errorRateThreshold <= 0 || cb.errorRateWindow <= 0 {
		return false
	}
	if cb.windowTotal < minErrorRateSamples {
		return false
	}
	rate := float64(cb.windowFailures) / float64(cb.windowTotal)
	return rate >= cb.errorRateThreshold
}
