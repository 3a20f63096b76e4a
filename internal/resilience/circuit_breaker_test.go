package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

func newTestBreaker(failures, successes int) (*CircuitBreaker, *time.Time) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: failures,
		RecoveryTimeout:  10 * time.Second,
		SuccessThreshold: successes,
	})
	cb.now = func() time.Time { return now }
	return cb, &now
}

func fail() error    { return errDown }
func succeed() error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, 1)

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Call(fail), errDown)
		assert.Equal(t, StateClosed, cb.State())
	}
	assert.ErrorIs(t, cb.Call(fail), errDown)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.False(t, called)
	assert.ErrorIs(t, err, ErrOpen)

	var cbErr *CircuitBreakerError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, StateOpen, cbErr.State)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(2, 1)

	_ = cb.Call(fail)
	assert.NoError(t, cb.Call(succeed))
	assert.Equal(t, 0, cb.Failures())
	_ = cb.Call(fail)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_Recovery(t *testing.T) {
	tests := []struct {
		name  string
		probe func() error
		want  CircuitBreakerState
	}{
		{name: "probe succeeds", probe: succeed, want: StateClosed},
		{name: "probe fails", probe: fail, want: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, now := newTestBreaker(1, 1)
			_ = cb.Call(fail)
			require.Equal(t, StateOpen, cb.State())

			*now = now.Add(11 * time.Second)
			_ = cb.Call(tt.probe)
			assert.Equal(t, tt.want, cb.State())
		})
	}
}

func TestCircuitBreaker_HalfOpenNeedsSuccesses(t *testing.T) {
	cb, now := newTestBreaker(1, 2)
	_ = cb.Call(fail)
	*now = now.Add(11 * time.Second)

	require.NoError(t, cb.Call(succeed))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Call(succeed))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_ResetAndStats(t *testing.T) {
	cb, _ := newTestBreaker(1, 1)
	_ = cb.Call(fail)
	assert.Equal(t, "open", cb.GetStats()["state"])

	cb.Reset()
	assert.Equal(t, "closed", cb.GetStats()["state"])
	assert.Equal(t, 0, cb.GetStats()["failures"])
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1000})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = cb.Call(fail)
			} else {
				_ = cb.Call(succeed)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, StateClosed, cb.State())
}
