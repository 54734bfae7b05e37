package ranking

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/utafrali/catalog-search/internal/domain"
)

const (
	// fuzzyThreshold is the largest normalized edit distance still
	// considered a match.
	fuzzyThreshold = 0.4
	// minFuzzyLen is the shortest query or compared fragment, in runes.
	minFuzzyLen = 2
	// fuzzyEpsilon keeps a perfect field match from zeroing the product.
	fuzzyEpsilon = 1e-9
)

type fuzzyField struct {
	name   string
	weight float64
	values func(*domain.CatalogItem) []string
}

func single(get func(*domain.CatalogItem) string) func(*domain.CatalogItem) []string {
	return func(i *domain.CatalogItem) []string { return []string{get(i)} }
}

var fuzzyFields = []fuzzyField{
	{name: "name", weight: 0.40, values: single(fieldName)},
	{name: "brand", weight: 0.30, values: single(fieldBrand)},
	{name: "category", weight: 0.15, values: single(fieldCategory)},
	{name: "description", weight: 0.10, values: single(func(i *domain.CatalogItem) string { return i.Description })},
	{name: "model", weight: 0.25, values: single(fieldModel)},
	{name: "keywords", weight: 0.20, values: keywords},
}

var fuzzyWeightSum = func() float64 {
	var sum float64
	for _, f := range fuzzyFields {
		sum += f.weight
	}
	return sum
}()

// keywords returns the distinct lowercase tokens of the item's name,
// model, brand and category, in order of first appearance.
func keywords(item *domain.CatalogItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, src := range []string{item.Name, item.Model, item.Brand.Name, item.Category.Name} {
		for _, tok := range strings.Fields(strings.ToLower(src)) {
			if !seen[tok] {
				seen[tok] = true
				out = append(out, tok)
			}
		}
	}
	return out
}

// matchFuzzy scores items by approximate, typo-tolerant similarity across
// weighted fields.
func matchFuzzy(items []domain.CatalogItem, query string) []domain.MatchRecord {
	if utf8.RuneCountInString(query) < minFuzzyLen {
		return nil
	}
	queryWords := len(strings.Fields(query))

	var out []domain.MatchRecord
	for i := range items {
		item := &items[i]

		product := 1.0
		var matches []domain.FieldMatch
		for _, f := range fuzzyFields {
			bestD := math.Inf(1)
			bestValue := ""
			for _, v := range f.values(item) {
				if d, ok := fieldDistance(query, queryWords, v); ok && d < bestD {
					bestD, bestValue = d, v
				}
			}
			if bestValue == "" {
				continue
			}
			product *= math.Pow(math.Max(bestD, fuzzyEpsilon), f.weight/fuzzyWeightSum)
			matches = append(matches, domain.FieldMatch{Field: f.name, Value: bestValue})
		}

		if len(matches) == 0 {
			continue
		}
		out = append(out, domain.MatchRecord{
			Item:    item,
			Score:   capScore(1 - product),
			Matches: matches,
		})
	}
	return out
}

// fieldDistance returns the best normalized edit distance between the
// query and any fragment of value, and whether it is within the threshold.
// Fragments are the whole value, every window of as many words as the
// query has, and the prefix of each window cut to the query length.
func fieldDistance(query string, queryWords int, value string) (float64, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 0, false
	}

	queryLen := utf8.RuneCountInString(query)
	best := -1

	try := func(fragment string) {
		if utf8.RuneCountInString(fragment) < minFuzzyLen {
			return
		}
		dist := levenshtein.ComputeDistance(query, fragment)
		if best < 0 || dist < best {
			best = dist
		}
	}

	try(value)
	words := strings.Fields(value)
	for start := 0; start+queryWords <= len(words); start++ {
		window := strings.Join(words[start:start+queryWords], " ")
		try(window)
		if r := []rune(window); len(r) > queryLen {
			try(string(r[:queryLen]))
		}
	}

	if best < 0 {
		return 0, false
	}
	d := float64(best) / float64(queryLen)
	return d, d <= fuzzyThreshold
}
