package services

import "github.com/prometheus/client_golang/prometheus"

// Cache lookup outcomes.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// Vote outcomes.
const (
	voteRecorded     = "recorded"
	voteAlreadyVoted = "already_voted"
	voteExpired      = "expired"
	voteRejected     = "rejected"
	voteFailed       = "error"
)

var (
	// resultsCacheRequests counts result snapshot lookups by outcome.
	resultsCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_results_cache_requests_total",
			Help: "Result snapshot cache lookups by outcome (hit, miss, error).",
		},
		[]string{"result"},
	)

	// votesCast counts CastVote calls by outcome.
	votesCast = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_votes_total",
			Help: "Vote submissions by outcome.",
		},
		[]string{"outcome"},
	)

	// cacheInvalidations counts result cache invalidations by trigger.
	cacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_results_cache_invalidations_total",
			Help: "Result cache invalidations by triggering operation.",
		},
		[]string{"trigger"},
	)
)

func init() {
	prometheus.MustRegister(resultsCacheRequests, votesCast, cacheInvalidations)
}
