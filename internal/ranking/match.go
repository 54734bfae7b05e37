package ranking

import (
	"strings"

	"github.com/utafrali/catalog-search/internal/domain"
)

// Matcher identifies one of the fixed matching strategies.
type Matcher int

// The closed set of matchers run over the filtered candidates.
const (
	MatcherFuzzy Matcher = iota
	MatcherExact
	MatcherPartial
)

// Matchers returns every matcher in merge order.
func Matchers() []Matcher {
	return []Matcher{MatcherFuzzy, MatcherExact, MatcherPartial}
}

func (m Matcher) String() string {
	switch m {
	case MatcherFuzzy:
		return "fuzzy"
	case MatcherExact:
		return "exact"
	case MatcherPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Run executes matcher m over items. Items that match no field are left
// out of the output rather than reported with a zero score.
func Run(m Matcher, items []domain.CatalogItem, query string) []domain.MatchRecord {
	query = domain.NormalizeQuery(query)
	if query == "" {
		return nil
	}

	switch m {
	case MatcherFuzzy:
		return matchFuzzy(items, query)
	case MatcherExact:
		return matchExact(items, query)
	case MatcherPartial:
		return matchPartial(items, query)
	default:
		return nil
	}
}

// Match runs every matcher and merges their outputs.
func Match(items []domain.CatalogItem, query string) []domain.MatchRecord {
	outputs := make([][]domain.MatchRecord, 0, len(Matchers()))
	for _, m := range Matchers() {
		outputs = append(outputs, Run(m, items, query))
	}
	return Merge(outputs...)
}

type weightedField struct {
	name   string
	weight float64
	value  func(*domain.CatalogItem) string
}

func fieldName(i *domain.CatalogItem) string     { return i.Name }
func fieldModel(i *domain.CatalogItem) string    { return i.Model }
func fieldBrand(i *domain.CatalogItem) string    { return i.Brand.Name }
func fieldCategory(i *domain.CatalogItem) string { return i.Category.Name }

var exactFields = []weightedField{
	{name: "name", weight: 0.9, value: fieldName},
	{name: "model", weight: 0.8, value: fieldModel},
	{name: "brand", weight: 0.7, value: fieldBrand},
}

var partialFields = []weightedField{
	{name: "name", weight: 0.3, value: fieldName},
	{name: "brand", weight: 0.2, value: fieldBrand},
	{name: "category", weight: 0.15, value: fieldCategory},
	{name: "model", weight: 0.15, value: fieldModel},
}

// matchExact scores case-insensitive containment of the whole query.
func matchExact(items []domain.CatalogItem, query string) []domain.MatchRecord {
	var out []domain.MatchRecord
	for i := range items {
		item := &items[i]

		var (
			score   float64
			matches []domain.FieldMatch
		)
		for _, f := range exactFields {
			v := f.value(item)
			if v == "" || !strings.Contains(strings.ToLower(v), query) {
				continue
			}
			score += f.weight
			matches = append(matches, domain.FieldMatch{Field: f.name, Value: v})
		}

		if len(matches) > 0 {
			out = append(out, domain.MatchRecord{Item: item, Score: capScore(score), Matches: matches})
		}
	}
	return out
}

// matchPartial scores each whitespace-separated token independently and
// accumulates the contributions per item.
func matchPartial(items []domain.CatalogItem, query string) []domain.MatchRecord {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil
	}

	var out []domain.MatchRecord
	for i := range items {
		item := &items[i]

		var (
			score   float64
			matches []domain.FieldMatch
			seen    = make(map[string]bool, len(partialFields))
		)
		for _, token := range tokens {
			for _, f := range partialFields {
				v := f.value(item)
				if v == "" || !strings.Contains(strings.ToLower(v), token) {
					continue
				}
				score += f.weight
				if !seen[f.name] {
					seen[f.name] = true
					matches = append(matches, domain.FieldMatch{Field: f.name, Value: v})
				}
			}
		}

		if len(matches) > 0 {
			out = append(out, domain.MatchRecord{Item: item, Score: capScore(score), Matches: matches})
		}
	}
	return out
}

func capScore(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < 0 {
		return 0
	}
	return s
}
