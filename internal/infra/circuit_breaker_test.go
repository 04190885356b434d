package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpload = errors.New("upload failed")

func newTestBreaker(now *time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	})
	cb.now = func() time.Time { return *now }
	return cb
}

func fail(context.Context) error    { return errUpload }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, fail), errUpload)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errUpload)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenProbeCloses(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	require.Equal(t, CBOpen, cb.State())

	now = now.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ctx, succeed))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	now = now.Add(2 * time.Minute)

	assert.ErrorIs(t, cb.Execute(ctx, fail), errUpload)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_CancellationNotCounted(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := cb.Execute(ctx, func(context.Context) error { return context.Canceled })
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.NoError(t, cb.Execute(ctx, succeed))
	_ = cb.Execute(ctx, fail)
	assert.Equal(t, CBClosed, cb.State())
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
	assert.Equal(t, "unknown", CBState(42).String())
}
