package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailureThreshold: 3})
	boom := errors.New("boom")
	fail := func() error { return boom }

	for i := 0; i < 3; i++ {
		err := cb.Execute(context.Background(), fail)
		assert.ErrorIs(t, err, boom)
	}

	err := cb.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		FailureThreshold: 2,
		SuccessThreshold: 2,
		MaxRequests:      2,
		Timeout:          10 * time.Millisecond,
	})
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		cb.Execute(context.Background(), func() error { return boom })
	}
	require.ErrorIs(t, cb.Execute(context.Background(), func() error { return nil }), ErrCircuitOpen)

	time.Sleep(15 * time.Millisecond)

	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))

	assert.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		FailureThreshold: 1,
		Timeout:          10 * time.Millisecond,
	})
	boom := errors.New("boom")

	cb.Execute(context.Background(), func() error { return boom })
	time.Sleep(15 * time.Millisecond)

	assert.ErrorIs(t, cb.Execute(context.Background(), func() error { return boom }), boom)
	assert.ErrorIs(t, cb.Execute(context.Background(), func() error { return nil }), ErrCircuitOpen)
}
