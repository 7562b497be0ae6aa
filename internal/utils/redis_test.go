package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestTokenRevoker(t *testing.T) {
	rdb, mr := setupRedis(t)
	r := NewTokenRevoker(rdb)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation expires with the token")
}

func TestTokenRevoker_IgnoresExpiredTokens(t *testing.T) {
	rdb, mr := setupRedis(t)
	r := NewTokenRevoker(rdb)

	require.NoError(t, r.Revoke(context.Background(), "jti-1", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(revokedPrefix+"jti-1"))
}

func TestLoginThrottle(t *testing.T) {
	rdb, mr := setupRedis(t)
	th := NewLoginThrottle(rdb, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := th.Allow(ctx, "a@b.com")
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, th.Fail(ctx, "a@b.com"))
	}

	ok, err := th.Allow(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = th.Allow(ctx, "other@b.com")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = th.Allow(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_Reset(t *testing.T) {
	rdb, _ := setupRedis(t)
	th := NewLoginThrottle(rdb, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, th.Fail(ctx, "a@b.com"))
	ok, err := th.Allow(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, th.Reset(ctx, "a@b.com"))
	ok, err = th.Allow(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_FailKeepsWindow(t *testing.T) {
	rdb, mr := setupRedis(t)
	th := NewLoginThrottle(rdb, 5, time.Minute)
	ctx := context.Background()

	require.NoError(t, th.Fail(ctx, "a@b.com"))
	assert.Equal(t, time.Minute, mr.TTL(throttlePrefix+"a@b.com"))

	// Later failures do not slide the window.
	mr.FastForward(40 * time.Second)
	require.NoError(t, th.Fail(ctx, "a@b.com"))
	assert.Equal(t, 20*time.Second, mr.TTL(throttlePrefix+"a@b.com"))
	got, err := mr.Get(throttlePrefix + "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestLoginThrottle_FailExpiresStrayCounter(t *testing.T) {
	rdb, mr := setupRedis(t)
	th := NewLoginThrottle(rdb, 1, time.Minute)
	ctx := context.Background()

	// A counter left behind without a TTL.
	require.NoError(t, mr.Set(throttlePrefix+"a@b.com", "9"))
	require.NoError(t, th.Fail(ctx, "a@b.com"))
	assert.Equal(t, time.Minute, mr.TTL(throttlePrefix+"a@b.com"))

	mr.FastForward(2 * time.Minute)
	ok, err := th.Allow(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)
}
