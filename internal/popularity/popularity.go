// Package popularity counts how often each normalized query is searched.
package popularity

import (
	"context"
	"strings"

	"github.com/utafrali/catalog-search/internal/domain"
)

// Tracker records query frequencies and reports the most frequent ones.
type Tracker interface {
	// Record increments the counter of q. Queries that normalize to the
	// empty string are ignored.
	Record(ctx context.Context, q string) error
	// Top returns up to n queries ordered by descending count.
	Top(ctx context.Context, n int) ([]domain.PopularQuery, error)
	// Clear drops every counter.
	Clear(ctx context.Context) error
}

// Normalize trims and lowercases a query so that trivially different
// spellings share one counter.
func Normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
