package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_cache_hits_total",
		Help: "Total number of search result cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_cache_misses_total",
		Help: "Total number of search result cache misses, including expired entries",
	})

	cacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_cache_evictions_total",
			Help: "Total number of entries removed from the search result cache",
		},
		[]string{"reason"},
	)

	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "search_cache_entries",
		Help: "Current number of entries held by the search result cache",
	})
)
