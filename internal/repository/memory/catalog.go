// Package memory holds an in-process catalog used for local development,
// demos seeded from a JSON file, and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/utafrali/catalog-search/internal/domain"
	"github.com/utafrali/catalog-search/internal/repository"
	apperrors "github.com/utafrali/catalog-search/pkg/errors"
	"github.com/utafrali/catalog-search/pkg/slug"
	"github.com/utafrali/catalog-search/pkg/validator"
)

type stored struct {
	item domain.CatalogItem
	seq  uint64
}

// Catalog is an in-memory CatalogRepository and ReferenceLookup.
// Candidates come back in insertion order. Safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	items   map[string]stored
	nextSeq uint64
}

var (
	_ repository.CatalogRepository = (*Catalog)(nil)
	_ repository.ReferenceLookup   = (*Catalog)(nil)
)

// New creates an empty in-memory catalog.
func New() *Catalog {
	return &Catalog{items: make(map[string]stored)}
}

// Upsert validates and stores items, replacing any with the same ID.
// Brand and category slugs are derived from their names when absent.
// Nothing is stored if any item is invalid.
func (c *Catalog) Upsert(_ context.Context, items ...domain.CatalogItem) error {
	prepared := make([]domain.CatalogItem, len(items))
	for i, it := range items {
		if err := validator.Validate(&it); err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("catalog item %d (%q): %v", i, it.ID, err))
		}
		if it.Brand.Slug == "" {
			it.Brand.Slug = slug.Generate(it.Brand.Name)
		}
		if it.Category.Slug == "" {
			it.Category.Slug = slug.Generate(it.Category.Name)
		}
		prepared[i] = it
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range prepared {
		if prev, ok := c.items[it.ID]; ok {
			c.items[it.ID] = stored{item: it, seq: prev.seq}
			continue
		}
		c.items[it.ID] = stored{item: it, seq: c.nextSeq}
		c.nextSeq++
	}
	return nil
}

// Delete removes an item. Deleting an unknown ID is not an error.
func (c *Catalog) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, id)
	return nil
}

// Len returns the number of stored items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Load decodes a JSON array of catalog items from r and upserts them.
func (c *Catalog) Load(ctx context.Context, r io.Reader) error {
	var items []domain.CatalogItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return fmt.Errorf("decode catalog seed: %w", err)
	}
	return c.Upsert(ctx, items...)
}

// LoadFile is Load over the contents of the named file.
func (c *Catalog) LoadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog seed: %w", err)
	}
	defer f.Close()

	return c.Load(ctx, f)
}

// Candidates returns the active items matching the filter.
func (c *Catalog) Candidates(_ context.Context, filter repository.CandidateFilter) ([]domain.CatalogItem, error) {
	c.mu.RLock()
	matched := make([]stored, 0, len(c.items))
	for _, s := range c.items {
		if s.item.Status != domain.ItemStatusActive {
			continue
		}
		if filter.BrandID != "" && s.item.Brand.ID != filter.BrandID {
			continue
		}
		if filter.CategoryID != "" && s.item.Category.ID != filter.CategoryID {
			continue
		}
		matched = append(matched, s)
	}
	c.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]domain.CatalogItem, len(matched))
	for i, s := range matched {
		out[i] = s.item
	}
	return out, nil
}

// BrandID resolves a brand slug against the stored items.
func (c *Catalog) BrandID(_ context.Context, s string) (string, error) {
	return c.resolve("brand", s, func(it *domain.CatalogItem) domain.Ref { return it.Brand })
}

// CategoryID resolves a category slug against the stored items.
func (c *Catalog) CategoryID(_ context.Context, s string) (string, error) {
	return c.resolve("category", s, func(it *domain.CatalogItem) domain.Ref { return it.Category })
}

func (c *Catalog) resolve(resource, s string, ref func(*domain.CatalogItem) domain.Ref) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, st := range c.items {
		r := ref(&st.item)
		if r.ID != "" && r.Slug == s {
			return r.ID, nil
		}
	}
	return "", apperrors.NotFound(resource, s)
}
