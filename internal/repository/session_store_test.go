package repository

import (
	"context"
	"testing"
	"time"

	"AlgoSensei/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStores(t *testing.T) (*CacheSessionStores, *cache.MemoryCache) {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return NewCacheSessionStores(mc, time.Hour), mc
}

func TestCacheSessionStore_ScopedPerContext(t *testing.T) {
	ctx := context.Background()
	stores, _ := newMemoryStores(t)

	a := stores.ForContext("a")
	b := stores.ForContext("b")

	require.NoError(t, a.Set(ctx, "isLoggedIn", "true"))
	require.NoError(t, a.Set(ctx, "userEmail", "a@example.com"))

	got, err := a.GetMany(ctx, "isLoggedIn", "userEmail", "issuedAt")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"isLoggedIn": "true", "userEmail": "a@example.com"}, got)

	got, err = b.GetMany(ctx, "isLoggedIn")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCacheSessionStore_DeleteOnlyListed(t *testing.T) {
	ctx := context.Background()
	stores, _ := newMemoryStores(t)
	s := stores.ForContext("a")

	require.NoError(t, s.Set(ctx, "userEmail", "x@example.com"))
	require.NoError(t, s.Set(ctx, "sb-access-token", "at"))
	require.NoError(t, s.Delete(ctx, "sb-access-token", "sb-refresh-token"))

	got, err := s.GetMany(ctx, "userEmail", "sb-access-token")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"userEmail": "x@example.com"}, got)
}

func TestCacheSessionStore_ClearRemovesEveryMarkerOfContext(t *testing.T) {
	ctx := context.Background()
	stores, mc := newMemoryStores(t)
	a := stores.ForContext("5f0c6b2e-8d0a-4c1e-9a7b-2f3d4e5f6a7b")
	b := stores.ForContext("b")

	require.NoError(t, a.Set(ctx, "userEmail", "x@example.com"))
	require.NoError(t, a.Set(ctx, "stale-marker", "1"))
	require.NoError(t, b.Set(ctx, "userEmail", "y@example.com"))

	require.NoError(t, a.Clear(ctx))
	require.NoError(t, a.Clear(ctx))

	left, err := mc.MGet(ctx,
		"session:5f0c6b2e-8d0a-4c1e-9a7b-2f3d4e5f6a7b:userEmail",
		"session:5f0c6b2e-8d0a-4c1e-9a7b-2f3d4e5f6a7b:stale-marker",
		"session:b:userEmail",
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"session:b:userEmail": "y@example.com"}, left)
}

func TestCacheSessionStore_ClearRejectsGlobContextID(t *testing.T) {
	stores, _ := newMemoryStores(t)
	assert.Error(t, stores.ForContext("*").Clear(context.Background()))
	assert.Error(t, stores.ForContext("").Clear(context.Background()))
}

func TestCacheSessionStore_TouchSlidesExpiry(t *testing.T) {
	ctx := context.Background()
	rec := &expireRecorder{MemoryCache: cache.NewMemoryCache()}
	t.Cleanup(func() { _ = rec.Close() })
	s := NewCacheSessionStores(rec, time.Hour).ForContext("a")

	require.NoError(t, s.Set(ctx, "isLoggedIn", "true"))
	require.NoError(t, s.Touch(ctx, "isLoggedIn", "userEmail"))

	assert.Equal(t, []string{"session:a:isLoggedIn", "session:a:userEmail"}, rec.keys)
	assert.Equal(t, []time.Duration{time.Hour, time.Hour}, rec.ttls)
}

func TestCacheSessionStore_TouchWithoutTTLIsNoop(t *testing.T) {
	rec := &expireRecorder{MemoryCache: cache.NewMemoryCache()}
	t.Cleanup(func() { _ = rec.Close() })
	s := NewCacheSessionStores(rec, 0).ForContext("a")

	require.NoError(t, s.Touch(context.Background(), "isLoggedIn"))
	assert.Empty(t, rec.keys)
}

type expireRecorder struct {
	*cache.MemoryCache
	keys []string
	ttls []time.Duration
}

func (r *expireRecorder) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	r.keys = append(r.keys, key)
	r.ttls = append(r.ttls, ttl)
	return r.MemoryCache.Expire(ctx, key, ttl)
}
