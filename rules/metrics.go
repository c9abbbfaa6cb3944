package rules

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rulesCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "palisade_ruleset_cache_hits",
	Help: "Number of ruleset loads served from the cache",
})

var rulesCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "palisade_ruleset_cache_misses",
	Help: "Number of ruleset loads which fell back to the durable source",
})

var rulesCacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
	Name: "palisade_ruleset_cache_invalidations",
	Help: "Number of explicit ruleset cache invalidations",
})
