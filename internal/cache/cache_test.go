package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog-search/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func keyN(n int) Key {
	return KeyFor(domain.SearchRequest{Query: fmt.Sprintf("query-%d", n)})
}

func result(total int) *domain.SearchResult {
	return &domain.SearchResult{Results: []domain.ScoredItem{}, Total: total}
}

func TestCache_SetAndGet(t *testing.T) {
	c := New()
	k := keyN(1)

	_, ok := c.Get(k)
	assert.False(t, ok)

	want := result(3)
	c.Set(k, want)

	got, ok := c.Get(k)
	require.True(t, ok)
	assert.Same(t, want, got)
}

func TestCache_Defaults(t *testing.T) {
	c := New(WithTTL(0), WithMaxEntries(-1), WithClock(nil))

	assert.Equal(t, DefaultTTL, c.TTL())
	assert.Equal(t, DefaultMaxEntries, c.maxEntries)
	assert.NotNil(t, c.now)
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	c := New(WithTTL(time.Minute), WithClock(clock.Now))
	k := keyN(1)

	c.Set(k, result(1))

	clock.Advance(59 * time.Second)
	_, ok := c.Get(k)
	assert.True(t, ok, "entry is live just before the TTL")

	clock.Advance(time.Second)
	_, ok = c.Get(k)
	assert.False(t, ok, "entry is not returned once the TTL has elapsed")
	assert.Equal(t, 0, c.Len(), "expired entry is removed on read")
}

func TestCache_SetReplacesAndRefreshes(t *testing.T) {
	clock := newFakeClock()
	c := New(WithTTL(time.Minute), WithClock(clock.Now))
	k := keyN(1)

	c.Set(k, result(1))
	clock.Advance(50 * time.Second)
	c.Set(k, result(2))
	clock.Advance(50 * time.Second)

	got, ok := c.Get(k)
	require.True(t, ok)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, c.Len())
}

func TestCache_SweepsExpiredBeforeEvicting(t *testing.T) {
	clock := newFakeClock()
	c := New(WithTTL(time.Minute), WithMaxEntries(3), WithClock(clock.Now))

	c.Set(keyN(1), result(1))
	c.Set(keyN(2), result(2))
	clock.Advance(2 * time.Minute)
	c.Set(keyN(3), result(3))

	// At the ceiling: the two expired entries are swept, the live one stays.
	c.Set(keyN(4), result(4))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(keyN(3))
	assert.True(t, ok)
	_, ok = c.Get(keyN(4))
	assert.True(t, ok)
}

func TestCache_NeverExceedsCeiling(t *testing.T) {
	c := New(WithMaxEntries(5))

	for i := 0; i < 20; i++ {
		c.Set(keyN(i), result(i))
		assert.LessOrEqual(t, c.Len(), 5)
	}

	_, ok := c.Get(keyN(19))
	assert.True(t, ok, "newest entry is always admitted")
}

func TestCache_Clear(t *testing.T) {
	c := New()
	for i := 0; i < 10; i++ {
		c.Set(keyN(i), result(i))
	}

	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(keyN(1))
	assert.False(t, ok)
	assert.Equal(t, domain.CacheStats{TTL: DefaultTTL}, c.Stats())
}

func TestCache_SetIfGeneration(t *testing.T) {
	c := New()
	gen := c.Generation()

	assert.True(t, c.SetIfGeneration(keyN(1), result(1), gen))
	_, ok := c.Get(keyN(1))
	assert.True(t, ok)

	c.Clear()
	assert.NotEqual(t, gen, c.Generation())

	assert.False(t, c.SetIfGeneration(keyN(2), result(2), gen), "stale generation must not be stored")
	assert.Equal(t, 0, c.Len())

	assert.True(t, c.SetIfGeneration(keyN(2), result(2), c.Generation()))
	assert.Equal(t, 1, c.Len())
}

func TestCache_Stats(t *testing.T) {
	clock := newFakeClock()
	c := New(WithTTL(time.Minute), WithClock(clock.Now))

	c.Set(keyN(1), result(1))
	c.Set(keyN(2), result(2))
	clock.Advance(90 * time.Second)
	c.Set(keyN(3), result(3))

	stats := c.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 2, stats.Expired)
	assert.Equal(t, time.Minute, stats.TTL)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(WithMaxEntries(16))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := keyN((w*31 + i) % 40)
				if _, ok := c.Get(k); !ok {
					c.Set(k, result(i))
				}
				if i%50 == 0 {
					_ = c.Stats()
				}
				if i%97 == 0 {
					c.Clear()
				}
			}
		}(w)
	}
	wg.Wait()

	stats := c.Stats()
	assert.LessOrEqual(t, stats.Total, 16)
	assert.Equal(t, stats.Total, stats.Active+stats.Expired)
}
