package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote call failed")

func failingCall() error { return errRemote }

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker("test", BreakerConfig{})

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0.5, cb.config.FailureRatio)
	assert.Equal(t, 10, cb.config.WindowSize)
	assert.Equal(t, 60*time.Second, cb.config.CoolDown)
}

func TestCircuitBreaker_OpensOnFailureRate(t *testing.T) {
	cb := NewCircuitBreaker("test", BreakerConfig{
		FailureRatio: 0.5,
		WindowSize:   10,
		MinRequests:  4,
		CoolDown:     time.Minute,
	})

	// Three failures are below MinRequests, circuit stays closed
	for i := 0; i < 3; i++ {
		err := cb.Execute(failingCall)
		assert.ErrorIs(t, err, errRemote)
	}
	assert.Equal(t, StateClosed, cb.State())

	// Fourth failure crosses MinRequests with 100% error rate
	err := cb.Execute(failingCall)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, StateOpen, cb.State())

	// While open, calls fail fast without invoking the operation
	invoked := false
	err = cb.Execute(func() error {
		invoked = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, invoked)
}

func TestCircuitBreaker_StaysClosedBelowRatio(t *testing.T) {
	cb := NewCircuitBreaker("test", BreakerConfig{
		FailureRatio: 0.5,
		WindowSize:   10,
		MinRequests:  4,
		CoolDown:     time.Minute,
	})

	// Alternate success/failure: 40% error rate over the window
	for i := 0; i < 10; i++ {
		if i%5 < 3 {
			require.NoError(t, cb.Execute(func() error { return nil }))
		} else {
			cb.Execute(failingCall)
		}
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenAfterCoolDown(t *testing.T) {
	cb := NewCircuitBreaker("test", BreakerConfig{
		FailureRatio: 0.5,
		WindowSize:   4,
		MinRequests:  2,
		CoolDown:     50 * time.Millisecond,
	})

	cb.Execute(failingCall)
	cb.Execute(failingCall)
	require.Equal(t, StateOpen, cb.State())

	// Before the cool-down elapses the circuit stays open
	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)

	time.Sleep(60 * time.Millisecond)

	// First call after cool-down is the half-open trial; success closes
	err = cb.Execute(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", BreakerConfig{
		FailureRatio: 0.5,
		WindowSize:   4,
		MinRequests:  2,
		CoolDown:     20 * time.Millisecond,
	})

	cb.Execute(failingCall)
	cb.Execute(failingCall)
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(30 * time.Millisecond)

	err := cb.Execute(failingCall)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_TransitionsObservable(t *testing.T) {
	type transition struct{ from, to State }
	var transitions []transition

	cb := NewCircuitBreaker("test", BreakerConfig{
		FailureRatio: 0.5,
		WindowSize:   4,
		MinRequests:  2,
		CoolDown:     20 * time.Millisecond,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, transition{from, to})
		},
	})

	cb.Execute(failingCall)
	cb.Execute(failingCall)
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, cb.Execute(func() error { return nil }))

	require.Len(t, transitions, 3)
	assert.Equal(t, transition{StateClosed, StateOpen}, transitions[0])
	assert.Equal(t, transition{StateOpen, StateHalfOpen}, transitions[1])
	assert.Equal(t, transition{StateHalfOpen, StateClosed}, transitions[2])
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
