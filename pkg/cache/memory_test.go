package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/cache"
)

type clock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func page(body string) *cache.Page {
	return &cache.Page{Status: 200, Body: []byte(body)}
}

func TestMemory_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := cache.NewMemory()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, store.Set(ctx, "a", page("one"), 0))
	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "one", string(got.Body))

	require.NoError(t, store.Set(ctx, "a", page("two"), 0))
	got, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got.Body))
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_TTL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ttl     time.Duration
		advance time.Duration
		found   bool
	}{
		{name: "fresh", ttl: time.Minute, advance: 30 * time.Second, found: true},
		{name: "expired", ttl: time.Minute, advance: time.Minute},
		{name: "default ttl", advance: 2 * time.Second, found: true},
		{name: "default ttl expired", advance: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			clk := &clock{now: time.Unix(1_700_000_000, 0)}
			store := cache.NewMemory(cache.WithClock(clk.Now), cache.WithDefaultTTL(5*time.Second))

			require.NoError(t, store.Set(ctx, "k", page("body"), tt.ttl))
			clk.Advance(tt.advance)

			_, err := store.Get(ctx, "k")
			if tt.found {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, cache.ErrNotFound)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := cache.NewMemory(cache.WithMaxEntries(2))

	require.NoError(t, store.Set(ctx, "a", page("a"), 0))
	require.NoError(t, store.Set(ctx, "b", page("b"), 0))
	_, err := store.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "c", page("c"), 0))
	assert.Equal(t, 2, store.Len())

	_, err = store.Get(ctx, "b")
	require.ErrorIs(t, err, cache.ErrNotFound)
	_, err = store.Get(ctx, "a")
	require.NoError(t, err)
	_, err = store.Get(ctx, "c")
	require.NoError(t, err)
}

func TestMemory_EvictsExpiredFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	store := cache.NewMemory(cache.WithClock(clk.Now), cache.WithMaxEntries(2))

	require.NoError(t, store.Set(ctx, "short", page("s"), time.Second))
	require.NoError(t, store.Set(ctx, "long", page("l"), time.Hour))
	_, err := store.Get(ctx, "short")
	require.NoError(t, err)

	clk.Advance(2 * time.Second)
	require.NoError(t, store.Set(ctx, "new", page("n"), time.Hour))

	_, err = store.Get(ctx, "long")
	require.NoError(t, err)
	_, err = store.Get(ctx, "new")
	require.NoError(t, err)
}

func TestPage_Age(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	assert.Zero(t, (&cache.Page{}).Age(now))
	assert.Equal(t, time.Minute, (&cache.Page{StoredAt: now.Add(-time.Minute)}).Age(now))
}
