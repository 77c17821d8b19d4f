package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

func testConfig() Config {
	return Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             20 * time.Millisecond,
		MaxRequestsHalfOpen: 2,
	}
}

func failN(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(context.Background(), func() error { return errBackend })
	}
}

func TestExecutePassesErrorThroughUnchanged(t *testing.T) {
	cb := New(testConfig())

	err := cb.Execute(context.Background(), func() error { return errBackend })

	assert.Equal(t, errBackend, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := New(testConfig())

	failN(cb, 3)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(context.Background(), func() error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "request rejected")
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	cb := New(testConfig())

	failN(cb, 2)
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	failN(cb, 2)

	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenProbeClosesAfterSuccesses(t *testing.T) {
	cb := New(testConfig())

	failN(cb, 3)
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(25 * time.Millisecond)

	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(testConfig())

	failN(cb, 3)
	time.Sleep(25 * time.Millisecond)

	err := cb.Execute(context.Background(), func() error { return errBackend })
	assert.Equal(t, errBackend, err)
	assert.Equal(t, StateOpen, cb.State())
}

func TestReset(t *testing.T) {
	cb := New(testConfig())

	failN(cb, 3)
	require.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
}

func TestStateChangeCallback(t *testing.T) {
	cb := New(testConfig())

	transitions := make(chan [2]State, 4)
	cb.OnStateChange(func(from, to State) {
		transitions <- [2]State{from, to}
	})

	failN(cb, 3)

	select {
	case tr := <-transitions:
		assert.Equal(t, StateClosed, tr[0])
		assert.Equal(t, StateOpen, tr[1])
	case <-time.After(time.Second):
		t.Fatal("state change callback was not invoked")
	}
}
