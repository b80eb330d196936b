package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState is the breaker position: closed passes calls through, open
// blocks them, half-open lets a trial call decide.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// HealthProbe checks the guarded upstream out of band. It runs on its own
// goroutine while the circuit is open and may block for several seconds.
type HealthProbe func() bool

// CircuitBreaker blocks calls to a failing upstream until it recovers.
// Recovery is probe-driven when a health probe is configured, timer-driven
// otherwise.
type CircuitBreaker struct {
	mu        sync.Mutex
	state     CircuitState
	failures  int
	threshold int

	resetTimeout time.Duration
	retryAt      time.Time

	probeFn    HealthProbe
	probeEvery time.Duration
	nextProbe  time.Time
	probing    bool

	logger *zap.Logger
}

func NewCircuitBreaker(threshold int, resetTimeout, probeInterval time.Duration, probe HealthProbe, logger *zap.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:    threshold,
		resetTimeout: resetTimeout,
		probeEvery:   probeInterval,
		probeFn:      probe,
		logger:       logger,
	}
}

// CanExecute reports whether a call may proceed. While open it also drives
// recovery: with a probe configured it schedules one, without it the circuit
// moves to half-open once the retry time passes.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitOpen {
		return true
	}

	now := time.Now()
	if cb.probeFn != nil {
		if now.After(cb.nextProbe) && !cb.probing {
			cb.probing = true
			go cb.runProbe()
		}
		return false
	}

	if now.After(cb.retryAt) {
		cb.moveTo(CircuitHalfOpen)
		return true
	}
	return false
}

// RecordSuccess closes the circuit after a half-open trial and clears the
// failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch {
	case cb.state == CircuitHalfOpen:
		cb.logger.Info("Circuit breaker: upstream recovered, closing")
		cb.moveTo(CircuitClosed)
		cb.failures = 0
	case cb.failures > 0:
		cb.logger.Debug("Circuit breaker: clearing failure count", zap.Int("was", cb.failures))
		cb.failures = 0
	}
}

// RecordFailure counts a service-class failure. A positive customTimeout
// overrides the configured reset window (rate limits get a longer one).
func (cb *CircuitBreaker) RecordFailure(customTimeout time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++

	wait := cb.resetTimeout
	if customTimeout > 0 {
		wait = customTimeout
	}

	cb.logger.Warn("Circuit breaker: failure recorded",
		zap.Int("count", cb.failures),
		zap.Int("threshold", cb.threshold),
		zap.Duration("wait", wait),
	)

	if cb.state == CircuitHalfOpen {
		cb.logger.Error("Circuit breaker: trial call failed, reopening")
		cb.trip(wait)
		return
	}
	if cb.failures >= cb.threshold {
		cb.logger.Error("Circuit breaker: failure threshold reached, opening",
			zap.Int("threshold", cb.threshold))
		cb.trip(wait)
	}
}

// trip opens the circuit and schedules recovery. Callers hold the lock.
func (cb *CircuitBreaker) trip(wait time.Duration) {
	cb.retryAt = time.Now().Add(wait)
	if cb.probeFn != nil {
		cb.nextProbe = time.Now().Add(cb.probeEvery)
	}
	cb.moveTo(CircuitOpen)
}

// runProbe executes the health probe off the caller's goroutine and moves
// the circuit to half-open when the upstream answers again.
func (cb *CircuitBreaker) runProbe() {
	healthy := cb.probeFn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false

	if cb.state != CircuitOpen {
		return
	}
	if healthy {
		cb.logger.Info("Circuit breaker: health probe passed, moving to half-open")
		cb.moveTo(CircuitHalfOpen)
		return
	}
	cb.logger.Warn("Circuit breaker: health probe failed, backing off")
	cb.nextProbe = time.Now().Add(cb.probeEvery)
}

// moveTo records a state change. Callers hold the lock.
func (cb *CircuitBreaker) moveTo(next CircuitState) {
	if cb.state == next {
		return
	}
	cb.logger.Info("Circuit breaker: state change",
		zap.String("from", cb.state.String()),
		zap.String("to", next.String()),
		zap.Int("failures", cb.failures),
	)
	cb.state = next
}

// Reset forces the circuit closed and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.logger.Info("Circuit breaker: manual reset")
	cb.state = CircuitClosed
	cb.failures = 0
	cb.retryAt = time.Time{}
	cb.nextProbe = time.Time{}
}

// GetStatus snapshots the breaker for health and logging output.
func (cb *CircuitBreaker) GetStatus() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{
		State:        cb.state,
		FailureCount: cb.failures,
	}
	if cb.state == CircuitOpen {
		retry := cb.retryAt
		status.NextRetryTime = &retry
	}
	return status
}

// CircuitBreakerStatus is a point-in-time snapshot of the breaker.
type CircuitBreakerStatus struct {
	State         CircuitState
	FailureCount  int
	NextRetryTime *time.Time
}
