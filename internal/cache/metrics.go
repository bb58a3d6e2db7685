package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wellkeeper",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups answered from memory.",
		},
		[]string{"kind"},
	)

	missesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wellkeeper",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that had to go to the store.",
		},
		[]string{"kind"},
	)

	evictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wellkeeper",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries removed by expiry or invalidation.",
		},
		[]string{"kind"},
	)

	coalescedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wellkeeper",
			Subsystem: "cache",
			Name:      "coalesced_total",
			Help:      "Loads that shared an in-flight store call.",
		},
		[]string{"kind"},
	)
)
