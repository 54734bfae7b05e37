package popularity

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog-search/internal/domain"
)

func record(t *testing.T, tr Tracker, queries ...string) {
	t.Helper()
	for _, q := range queries {
		require.NoError(t, tr.Record(context.Background(), q))
	}
}

func TestMemory_TopOrdersByCount(t *testing.T) {
	m := NewMemory()
	record(t, m, "pixel", "iphone", "pixel", "pixel")

	top, err := m.Top(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.PopularQuery{{Query: "pixel", Count: 3}}, top)

	top, err = m.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.PopularQuery{
		{Query: "pixel", Count: 3},
		{Query: "iphone", Count: 1},
	}, top)
}

func TestMemory_NormalizesAndIgnoresEmpty(t *testing.T) {
	m := NewMemory()
	record(t, m, "  Pixel ", "PIXEL", "pixel", "", "   ")

	top, err := m.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.PopularQuery{{Query: "pixel", Count: 3}}, top)
}

func TestMemory_TiesKeepFirstSeenOrder(t *testing.T) {
	m := NewMemory()
	record(t, m, "watch", "laptop", "tablet", "laptop", "watch", "tablet")

	top, err := m.Top(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "watch", top[0].Query)
	assert.Equal(t, "laptop", top[1].Query)
	assert.Equal(t, "tablet", top[2].Query)
}

func TestMemory_TopNonPositive(t *testing.T) {
	m := NewMemory()
	record(t, m, "pixel")

	top, err := m.Top(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, top)
	assert.Empty(t, top)
}

func TestMemory_Clear(t *testing.T) {
	m := NewMemory()
	record(t, m, "pixel", "iphone")

	require.NoError(t, m.Clear(context.Background()))

	top, err := m.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestMemory_ConcurrentRecord(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = m.Record(context.Background(), "shared")
				_ = m.Record(context.Background(), fmt.Sprintf("worker-%d", w))
			}
		}(w)
	}
	wg.Wait()

	top, err := m.Top(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.PopularQuery{{Query: "shared", Count: 1000}}, top)
}
