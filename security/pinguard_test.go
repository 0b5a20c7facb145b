package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard() (*PinSecurityGuard, *time.Time) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	guard := NewPinSecurityGuard(NewMemoryAttemptStore())
	guard.Now = func() time.Time { return now }
	return guard, &now
}

func TestLockoutAfterFiveFailures(t *testing.T) {
	guard, now := newTestGuard()
	ctx := context.Background()
	id := "owner-pin:1"

	for i := 1; i < MaxPinAttempts; i++ {
		remaining, err := guard.RecordFailedAttempt(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, MaxPinAttempts-i, remaining)

		locked, err := guard.IsLockedOut(ctx, id)
		require.NoError(t, err)
		assert.False(t, locked, "locked out after %d attempts", i)
	}

	remaining, err := guard.RecordFailedAttempt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	locked, err := guard.IsLockedOut(ctx, id)
	require.NoError(t, err)
	assert.True(t, locked)

	// still locked just before expiry
	*now = now.Add(PinLockoutDuration - time.Second)
	locked, err = guard.IsLockedOut(ctx, id)
	require.NoError(t, err)
	assert.True(t, locked)

	// unlocked once the window elapses
	*now = now.Add(2 * time.Second)
	locked, err = guard.IsLockedOut(ctx, id)
	require.NoError(t, err)
	assert.False(t, locked)

	// the expired record was evicted; a fresh failure starts at full count
	remaining, err = guard.RecordFailedAttempt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, MaxPinAttempts-1, remaining)
}

func TestSuccessfulAttemptResetsCount(t *testing.T) {
	guard, _ := newTestGuard()
	ctx := context.Background()
	id := "owner-pin:2"

	for i := 0; i < 3; i++ {
		_, err := guard.RecordFailedAttempt(ctx, id)
		require.NoError(t, err)
	}

	require.NoError(t, guard.RecordSuccessfulAttempt(ctx, id))

	remaining, err := guard.RecordFailedAttempt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, MaxPinAttempts-1, remaining)
}

func TestLockoutRemaining(t *testing.T) {
	guard, now := newTestGuard()
	ctx := context.Background()
	id := "owner-pin:3"

	for i := 0; i < MaxPinAttempts; i++ {
		_, err := guard.RecordFailedAttempt(ctx, id)
		require.NoError(t, err)
	}

	remaining, err := guard.LockoutRemaining(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, PinLockoutDuration, remaining)

	*now = now.Add(5 * time.Minute)
	remaining, err = guard.LockoutRemaining(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, remaining)
}

func TestIdentifiersAreIndependent(t *testing.T) {
	guard, _ := newTestGuard()
	ctx := context.Background()

	for i := 0; i < MaxPinAttempts; i++ {
		_, err := guard.RecordFailedAttempt(ctx, "shop-1:owner")
		require.NoError(t, err)
	}

	locked, err := guard.IsLockedOut(ctx, "shop-2:owner")
	require.NoError(t, err)
	assert.False(t, locked)
}
