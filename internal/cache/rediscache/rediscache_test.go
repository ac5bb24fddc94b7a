package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSetRemove(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "tenant-a")
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "themeConfigVersion", []byte("3")))
	require.True(t, mr.Exists("tenant-a:themeConfigVersion"))
	require.Equal(t, time.Duration(0), mr.TTL("tenant-a:themeConfigVersion"))

	b, ok, err := c.Get(ctx, "themeConfigVersion")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("3"), b)

	require.NoError(t, c.Remove(ctx, "themeConfigVersion"))
	_, ok, err = c.Get(ctx, "themeConfigVersion")
	require.NoError(t, err)
	require.False(t, ok)

	// removing twice is fine
	require.NoError(t, c.Remove(ctx, "themeConfigVersion"))
}

func TestStore_NoPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "")
	require.NoError(t, c.Set(context.Background(), "authToken", []byte("tok")))
	require.True(t, mr.Exists("authToken"))
}

func TestStore_GetError(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "")
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis get")
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr(), "tenant-a")
	t.Cleanup(func() { _ = rl.Close() })

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "rl:validate:pay_1", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "rl:validate:pay_1", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "rl:validate:pay_1", 2, time.Minute)
	require.False(t, ok)
	require.Equal(t, int64(3), n)

	require.True(t, mr.Exists("tenant-a:rl:validate:pay_1"))
	require.Equal(t, time.Minute, mr.TTL("tenant-a:rl:validate:pay_1"))
}

func TestRateLimiter_ClosedClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr(), "")
	require.NoError(t, rl.Close())

	_, _, err := rl.Allow(context.Background(), "rl:validate", 1, time.Minute)
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis rate limit rl:validate")
}
