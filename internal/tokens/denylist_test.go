package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDenylist(t *testing.T) (*Denylist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewDenylist(client), mr
}

func TestDenylistRevokeAndLookup(t *testing.T) {
	denylist, _ := setupDenylist(t)
	ctx := context.Background()

	assert.False(t, denylist.IsRevoked(ctx, "some-jti"))

	require.NoError(t, denylist.Revoke(ctx, "some-jti", time.Hour))
	assert.True(t, denylist.IsRevoked(ctx, "some-jti"))
	assert.False(t, denylist.IsRevoked(ctx, "other-jti"))
}

func TestDenylistEntryExpires(t *testing.T) {
	denylist, mr := setupDenylist(t)
	ctx := context.Background()

	require.NoError(t, denylist.Revoke(ctx, "short-lived", time.Minute))
	assert.True(t, denylist.IsRevoked(ctx, "short-lived"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, denylist.IsRevoked(ctx, "short-lived"))
}

func TestDenylistExpiredTokenNeedsNoEntry(t *testing.T) {
	denylist, mr := setupDenylist(t)

	require.NoError(t, denylist.Revoke(context.Background(), "already-expired", -time.Minute))
	assert.Empty(t, mr.Keys())
}

func TestDenylistFailsOpenWithoutBackend(t *testing.T) {
	var denylist *Denylist
	ctx := context.Background()

	assert.False(t, denylist.IsRevoked(ctx, "anything"))
	assert.NoError(t, denylist.Revoke(ctx, "anything", time.Hour))

	unconfigured := NewDenylist(nil)
	assert.False(t, unconfigured.IsRevoked(ctx, "anything"))
}

func TestDenylistFailsOpenWhenBackendDies(t *testing.T) {
	denylist, mr := setupDenylist(t)
	ctx := context.Background()

	require.NoError(t, denylist.Revoke(ctx, "jti-1", time.Hour))
	mr.Close()

	// Backend gone: lookups report not revoked instead of failing auth.
	assert.False(t, denylist.IsRevoked(ctx, "jti-1"))
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	b := newBreaker(3, time.Hour)
	boom := func() error { return assert.AnError }

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.execute(boom), assert.AnError)
	}

	// Circuit is now open; calls are short-circuited.
	assert.ErrorIs(t, b.execute(boom), ErrBreakerOpen)
}

func TestBreakerRecoversAfterCooldown(t *testing.T) {
	b := newBreaker(1, 10*time.Millisecond)

	assert.Error(t, b.execute(func() error { return assert.AnError }))
	assert.ErrorIs(t, b.execute(func() error { return nil }), ErrBreakerOpen)

	time.Sleep(20 * time.Millisecond)

	// Half-open probe succeeds and closes the circuit again.
	assert.NoError(t, b.execute(func() error { return nil }))
	assert.NoError(t, b.execute(func() error { return nil }))
}
