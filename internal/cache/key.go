package cache

import (
	"crypto/sha256"
	"net/url"
	"strconv"

	"github.com/utafrali/catalog-search/internal/domain"
)

// Key identifies a cached result.
type Key [32]byte

// KeyFor derives the cache key of a request. The request is normalized
// first, so two requests that differ only in defaulted or clamped values
// share a key. url.Values.Encode sorts by parameter name, which makes the
// key independent of field order.
func KeyFor(req domain.SearchRequest) Key {
	n := req.Normalize()

	v := url.Values{}
	v.Set("q", n.Query)
	v.Set("brand", n.Brand)
	v.Set("category", n.Category)
	v.Set("min_price", strconv.FormatFloat(n.MinPrice, 'g', -1, 64))
	if n.MaxPrice != nil {
		v.Set("max_price", strconv.FormatFloat(*n.MaxPrice, 'g', -1, 64))
	}
	v.Set("in_stock", strconv.FormatBool(n.InStock))
	v.Set("sort", string(n.SortBy))
	v.Set("order", string(n.SortOrder))
	v.Set("limit", strconv.Itoa(n.Limit))
	v.Set("offset", strconv.Itoa(n.Offset))

	return sha256.Sum256([]byte(v.Encode()))
}
