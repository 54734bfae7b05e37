package ranking

import (
	"github.com/utafrali/catalog-search/internal/domain"
)

// Boost multipliers, applied in declaration order.
const (
	boostFeatured    = 1.20
	boostBestseller  = 1.15
	boostHighRating  = 1.10
	boostWellStocked = 1.05
	penaltyNoStock   = 0.5

	highRatingThreshold = 4.0
	wellStockedQuantity = 10
)

// Merge combines matcher outputs into one record per item, keeping the
// highest score seen for each item and the union of the field
// explanations. Records are ordered by first appearance.
func Merge(outputs ...[]domain.MatchRecord) []domain.MatchRecord {
	index := make(map[string]int)
	var merged []domain.MatchRecord

	for _, out := range outputs {
		for _, rec := range out {
			pos, ok := index[rec.Item.ID]
			if !ok {
				index[rec.Item.ID] = len(merged)
				merged = append(merged, domain.MatchRecord{
					Item:    rec.Item,
					Score:   rec.Score,
					Matches: appendMatches(nil, rec.Matches),
				})
				continue
			}

			m := &merged[pos]
			if rec.Score > m.Score {
				m.Score = rec.Score
			}
			m.Matches = appendMatches(m.Matches, rec.Matches)
		}
	}
	return merged
}

func appendMatches(dst, src []domain.FieldMatch) []domain.FieldMatch {
	for _, fm := range src {
		dup := false
		for _, have := range dst {
			if have == fm {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, fm)
		}
	}
	return dst
}

// Boost applies the business multipliers to a record's score and clamps
// the result to [0,1].
func Boost(rec domain.MatchRecord) domain.MatchRecord {
	item := rec.Item
	score := rec.Score

	if item.IsFeatured {
		score *= boostFeatured
	}
	if item.IsBestseller {
		score *= boostBestseller
	}
	if item.AverageRating > highRatingThreshold {
		score *= boostHighRating
	}
	if item.StockQuantity > wellStockedQuantity {
		score *= boostWellStocked
	}
	if item.StockQuantity <= 0 {
		score *= penaltyNoStock
	}

	rec.Score = capScore(score)
	return rec
}

// matchAll turns every item into a full-score record, used when the
// request carries no query.
func matchAll(items []domain.CatalogItem) []domain.MatchRecord {
	out := make([]domain.MatchRecord, len(items))
	for i := range items {
		out[i] = domain.MatchRecord{Item: &items[i], Score: 1, Matches: []domain.FieldMatch{}}
	}
	return out
}
