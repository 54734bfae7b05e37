package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/catalog-search/pkg/database"
	apperrors "github.com/utafrali/catalog-search/pkg/errors"
)

// ReferenceRepository resolves brand and category slugs.
type ReferenceRepository struct {
	pool database.DBTX
}

// NewReferenceRepository creates a new PostgreSQL-backed slug resolver.
func NewReferenceRepository(pool database.DBTX) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

// BrandID returns the identifier of the brand with the given slug.
func (r *ReferenceRepository) BrandID(ctx context.Context, slug string) (string, error) {
	return r.lookup(ctx, "GetBrandID", "brand", `SELECT id::text FROM brands WHERE slug = $1`, slug)
}

// CategoryID returns the identifier of the category with the given slug.
func (r *ReferenceRepository) CategoryID(ctx context.Context, slug string) (string, error) {
	return r.lookup(ctx, "GetCategoryID", "category", `SELECT id::text FROM categories WHERE slug = $1`, slug)
}

func (r *ReferenceRepository) lookup(ctx context.Context, operation, resource, query, slug string) (_ string, err error) {
	ctx, end := database.TraceQuery(ctx, operation, query)
	defer func() {
		// A missing slug is an expected outcome, not a failed query.
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	var id string
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NotFound(resource, slug)
		}
		return "", fmt.Errorf("get %s by slug: %w", resource, err)
	}

	return id, nil
}
