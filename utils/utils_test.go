package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Circuit Breaker Tests

func TestCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker("test")

	assert.Equal(t, "test", cb.Name())
	assert.Equal(t, uint32(5), cb.maxRequests)
	assert.Equal(t, 60*time.Second, cb.interval)
	assert.Equal(t, 30*time.Second, cb.timeout)
	assert.Equal(t, 0.6, cb.failureRatio)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_Settings(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerSettings{
		MaxRequests:  2,
		Timeout:      5 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  4,
	})

	assert.Equal(t, uint32(2), cb.maxRequests)
	assert.Equal(t, 5*time.Second, cb.timeout)
	assert.Equal(t, 0.5, cb.failureRatio)
	assert.Equal(t, uint32(4), cb.minRequests)
}

func TestCircuitBreaker_ExecuteSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()

	result, err := cb.Execute(ctx, func() (any, error) {
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(1), cb.counts.TotalSuccesses)
}

func TestCircuitBreaker_ExecuteFailure(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()

	boom := errors.New("test error")
	result, err := cb.Execute(ctx, func() (any, error) {
		return nil, boom
	})

	assert.Equal(t, boom, err)
	assert.Nil(t, result)
	assert.Equal(t, uint32(1), cb.counts.TotalFailures)
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerSettings{
		MinRequests:  4,
		FailureRatio: 0.5,
	})
	ctx := context.Background()

	boom := errors.New("down")
	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(ctx, func() (any, error) { return nil, boom })
	}

	assert.Equal(t, StateOpen, cb.State())

	// open breaker fails fast without calling the request
	called := false
	_, err := cb.Execute(ctx, func() (any, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerSettings{
		MaxRequests:  1,
		MinRequests:  2,
		FailureRatio: 0.5,
		Timeout:      10 * time.Millisecond,
	})
	ctx := context.Background()

	boom := errors.New("down")
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(ctx, func() (any, error) { return nil, boom })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	_, err := cb.Execute(ctx, func() (any, error) { return "ok", nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerSettings{
		MaxRequests:  1,
		MinRequests:  2,
		FailureRatio: 0.5,
		Timeout:      10 * time.Millisecond,
	})
	ctx := context.Background()

	boom := errors.New("down")
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(ctx, func() (any, error) { return nil, boom })
	}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, cb.State())

	_, _ = cb.Execute(ctx, func() (any, error) { return nil, boom })
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_StateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
}

// Random Tests

func TestNewProofToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := NewProofToken()
		require.NoError(t, err)

		assert.Len(t, token, 40)
		assert.False(t, seen[token], "token collision")
		seen[token] = true
	}
}

func TestRandomString(t *testing.T) {
	s := RandomString(20)
	assert.Len(t, s, 20)
	assert.NotEqual(t, s, RandomString(20))

	for _, r := range s {
		assert.Contains(t, tokenCharset, string(r))
	}
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(4)
	require.NoError(t, err)
	assert.Len(t, code, 8)
}
