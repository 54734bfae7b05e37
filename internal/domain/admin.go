package domain

import (
	"encoding/json"
	"time"
)

// CacheStats reports the occupancy of the result cache.
type CacheStats struct {
	Total   int           `json:"total"`
	Active  int           `json:"active"`
	Expired int           `json:"expired"`
	TTL     time.Duration `json:"-"`
}

// MarshalJSON renders the TTL both as a duration string and in seconds.
func (s CacheStats) MarshalJSON() ([]byte, error) {
	type alias CacheStats
	return json.Marshal(struct {
		alias
		TTL        string  `json:"ttl"`
		TTLSeconds float64 `json:"ttlSeconds"`
	}{
		alias:      alias(s),
		TTL:        s.TTL.String(),
		TTLSeconds: s.TTL.Seconds(),
	})
}

// PopularQuery is a normalized query string and the number of times it was searched.
type PopularQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}
