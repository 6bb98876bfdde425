// Package resilience guards calls to external services with a circuit
// breaker and an exponential-backoff retry helper.
package resilience

import (
	"errors"
	"log"
	"sync"
	"time"
)

// State represents the state of a circuit breaker
type State int

const (
	// StateClosed indicates normal operation: calls pass through
	StateClosed State = iota
	// StateOpen indicates the breaker is rejecting calls without network I/O
	StateOpen
	// StateHalfOpen indicates a single trial call is permitted
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the circuit is open and the call was
// rejected without reaching the remote service.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig controls the thresholds for state transitions
type BreakerConfig struct {
	// FailureRatio is the error rate over the trailing window that opens the circuit
	FailureRatio float64
	// WindowSize is how many recent call outcomes the trailing window holds
	WindowSize int
	// MinRequests is the minimum number of recorded outcomes before the
	// breaker will trip, so a single failing first call doesn't open it
	MinRequests int
	// CoolDown is how long the circuit stays open before allowing a trial call
	CoolDown time.Duration
	// OnStateChange, when set, is invoked on every transition
	OnStateChange func(from, to State)
}

// DefaultBreakerConfig returns the default breaker tuning
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureRatio: 0.5,
		WindowSize:   10,
		MinRequests:  4,
		CoolDown:     60 * time.Second,
	}
}

// CircuitBreaker implements the circuit breaker pattern over a rolling
// window of call outcomes. One instance is shared process-wide per remote
// service, so all state is mutex-guarded.
type CircuitBreaker struct {
	mu sync.Mutex

	name   string
	config BreakerConfig
	state  State

	// ring buffer of recent outcomes, true = failure
	outcomes []bool
	next     int
	recorded int

	openedAt      time.Time
	trialInFlight bool
}

// NewCircuitBreaker creates a breaker in the closed state. Zero config
// fields fall back to DefaultBreakerConfig values.
func NewCircuitBreaker(name string, config BreakerConfig) *CircuitBreaker {
	defaults := DefaultBreakerConfig()
	if config.FailureRatio <= 0 {
		config.FailureRatio = defaults.FailureRatio
	}
	if config.WindowSize <= 0 {
		config.WindowSize = defaults.WindowSize
	}
	if config.MinRequests <= 0 {
		config.MinRequests = defaults.MinRequests
	}
	if config.CoolDown <= 0 {
		config.CoolDown = defaults.CoolDown
	}

	return &CircuitBreaker{
		name:     name,
		config:   config,
		state:    StateClosed,
		outcomes: make([]bool, config.WindowSize),
	}
}

// Execute runs fn behind the breaker: it fails fast with ErrCircuitOpen
// while the circuit is open, and records fn's outcome otherwise.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.allow(); err != nil {
		return err
	}

	if err := fn(); err != nil {
		cb.recordFailure()
		return err
	}

	cb.recordSuccess()
	return nil
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// allow decides whether a call may proceed. An open circuit transitions to
// half-open lazily once the cool-down has elapsed; half-open admits exactly
// one trial call at a time.
func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(cb.openedAt) >= cb.config.CoolDown {
			cb.transitionTo(StateHalfOpen)
			cb.trialInFlight = true
			return nil
		}
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.trialInFlight {
			return ErrCircuitOpen
		}
		cb.trialInFlight = true
		return nil
	}
	return nil
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.record(false)
	case StateHalfOpen:
		cb.trialInFlight = false
		cb.transitionTo(StateClosed)
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.record(true)
		if cb.recorded >= cb.config.MinRequests && cb.failureRate() >= cb.config.FailureRatio {
			cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		cb.trialInFlight = false
		cb.transitionTo(StateOpen)
	}
}

// record pushes one outcome into the rolling window
func (cb *CircuitBreaker) record(failure bool) {
	cb.outcomes[cb.next] = failure
	cb.next = (cb.next + 1) % len(cb.outcomes)
	if cb.recorded < len(cb.outcomes) {
		cb.recorded++
	}
}

func (cb *CircuitBreaker) failureRate() float64 {
	if cb.recorded == 0 {
		return 0
	}
	failures := 0
	for i := 0; i < cb.recorded; i++ {
		if cb.outcomes[i] {
			failures++
		}
	}
	return float64(failures) / float64(cb.recorded)
}

// transitionTo must be called with the mutex held
func (cb *CircuitBreaker) transitionTo(newState State) {
	oldState := cb.state
	cb.state = newState

	switch newState {
	case StateClosed:
		cb.next = 0
		cb.recorded = 0
	case StateOpen:
		cb.openedAt = time.Now()
		cb.next = 0
		cb.recorded = 0
	}

	log.Printf("[Breaker] %s: %s -> %s", cb.name, oldState, newState)
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, newState)
	}
}
