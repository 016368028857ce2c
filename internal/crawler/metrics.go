package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VenuesExtracted tracks the number of valid venue stubs pulled from the feed.
	VenuesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_venues_extracted_total",
		Help: "The total number of venue stubs extracted from search feeds.",
	})
	// VenuesRejected tracks feed nodes dropped for missing required fields.
	VenuesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_venues_rejected_total",
		Help: "The total number of feed nodes rejected during stub extraction.",
	})
	// PlaceJobsFailed tracks place jobs that exhausted their retry budget.
	PlaceJobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_place_jobs_failed_total",
		Help: "The total number of place jobs that terminally failed.",
	})
	// NavigationRetries tracks retried place-page navigations.
	NavigationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_navigation_retries_total",
		Help: "The total number of place-page navigation retries.",
	})
	// ReviewsExtracted tracks reviews that passed validation.
	ReviewsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_reviews_extracted_total",
		Help: "The total number of reviews extracted across all venues.",
	})
)
