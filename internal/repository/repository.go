package repository

import (
	"context"

	"github.com/utafrali/catalog-search/internal/domain"
)

// CandidateFilter narrows the candidate set fetched from the catalog.
// Empty fields mean "no restriction". Limit caps the number of items
// returned; zero means no cap.
type CandidateFilter struct {
	BrandID    string
	CategoryID string
	Limit      int
}

// CatalogRepository supplies the active catalog items that the ranking
// pipeline works on.
type CatalogRepository interface {
	Candidates(ctx context.Context, filter CandidateFilter) ([]domain.CatalogItem, error)
}

// ReferenceLookup resolves brand and category slugs to identifiers.
// Unknown slugs yield an error wrapping apperrors.ErrNotFound.
type ReferenceLookup interface {
	BrandID(ctx context.Context, slug string) (string, error)
	CategoryID(ctx context.Context, slug string) (string, error)
}
