package popularity

import (
	"context"
	"sort"
	"sync"

	"github.com/utafrali/catalog-search/internal/domain"
)

type counter struct {
	count int64
	seq   uint64
}

// Memory is an in-process Tracker. Queries with equal counts are ordered
// by when they were first recorded.
type Memory struct {
	mu       sync.Mutex
	counters map[string]*counter
	nextSeq  uint64
}

// NewMemory creates an empty in-process tracker.
func NewMemory() *Memory {
	return &Memory{counters: make(map[string]*counter)}
}

// Record increments the counter for q.
func (m *Memory) Record(_ context.Context, q string) error {
	q = Normalize(q)
	if q == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[q]
	if !ok {
		c = &counter{seq: m.nextSeq}
		m.nextSeq++
		m.counters[q] = c
	}
	c.count++
	return nil
}

// Top returns the n most frequent queries.
func (m *Memory) Top(_ context.Context, n int) ([]domain.PopularQuery, error) {
	if n <= 0 {
		return []domain.PopularQuery{}, nil
	}

	m.mu.Lock()
	type row struct {
		query string
		counter
	}
	rows := make([]row, 0, len(m.counters))
	for q, c := range m.counters {
		rows = append(rows, row{query: q, counter: *c})
	}
	m.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].seq < rows[j].seq
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	out := make([]domain.PopularQuery, len(rows))
	for i, r := range rows {
		out[i] = domain.PopularQuery{Query: r.query, Count: r.count}
	}
	return out, nil
}

// Clear drops every counter.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters = make(map[string]*counter)
	m.nextSeq = 0
	return nil
}
