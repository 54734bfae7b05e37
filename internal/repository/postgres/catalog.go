package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/utafrali/catalog-search/internal/domain"
	"github.com/utafrali/catalog-search/internal/repository"
	"github.com/utafrali/catalog-search/pkg/database"
)

// catalogColumns is the SELECT list scanned by scanItem.
const catalogColumns = `p.id, p.name, COALESCE(p.model, ''), COALESCE(p.description, ''),
	COALESCE(b.id::text, ''), COALESCE(b.name, ''), COALESCE(b.slug, ''),
	COALESCE(c.id::text, ''), COALESCE(c.name, ''), COALESCE(c.slug, ''),
	p.price::float8, p.original_price::float8, p.stock_quantity, p.status,
	p.is_featured, p.is_bestseller, COALESCE(p.average_rating, 0)::float8, p.created_at`

// CatalogRepository reads candidate items from the products table.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Candidates returns the active items matching the filter, oldest first.
func (r *CatalogRepository) Candidates(ctx context.Context, filter repository.CandidateFilter) (_ []domain.CatalogItem, err error) {
	var (
		conditions = []string{"p.status = $1"}
		args       = []any{domain.ItemStatusActive}
		argIndex   = 2
	)

	if filter.BrandID != "" {
		conditions = append(conditions, fmt.Sprintf("p.brand_id = $%d", argIndex))
		args = append(args, filter.BrandID)
		argIndex++
	}

	if filter.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIndex))
		args = append(args, filter.CategoryID)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE %s
		ORDER BY p.created_at, p.id`,
		catalogColumns, strings.Join(conditions, " AND "),
	)

	if filter.Limit > 0 {
		query += fmt.Sprintf("\n\t\tLIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	ctx, end := database.TraceQuery(ctx, "ListCandidates", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := []domain.CatalogItem{}
	for rows.Next() {
		var it domain.CatalogItem
		if err := rows.Scan(
			&it.ID,
			&it.Name,
			&it.Model,
			&it.Description,
			&it.Brand.ID,
			&it.Brand.Name,
			&it.Brand.Slug,
			&it.Category.ID,
			&it.Category.Name,
			&it.Category.Slug,
			&it.Price,
			&it.OriginalPrice,
			&it.StockQuantity,
			&it.Status,
			&it.IsFeatured,
			&it.IsBestseller,
			&it.AverageRating,
			&it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}

	return items, nil
}
