package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	outcomeOK          = "ok"
	outcomeNoMatch     = "no_match"
	outcomeNotFound    = "not_found"
	outcomeInvalid     = "invalid"
	outcomeUnavailable = "unavailable"
	outcomeError       = "error"
)

var (
	// RecommendRequestsTotal counts recommendation requests by outcome.
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasteprice_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"outcome"},
	)

	// RecommendDuration tracks end-to-end recommendation latency.
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tasteprice_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// WritesTotal counts rating and submission writes by outcome.
	WritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasteprice_writes_total",
			Help: "Total number of table writes",
		},
		[]string{"kind", "outcome"},
	)

	// CatalogLoadsTotal counts catalog loads by outcome.
	CatalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasteprice_catalog_loads_total",
			Help: "Total number of catalog loads from the backing table",
		},
		[]string{"outcome"},
	)
)

// ObserveCatalogLoad records a load attempt. It matches catalog.Cache.OnLoad.
func ObserveCatalogLoad(err error) {
	CatalogLoadsTotal.WithLabelValues(outcomeOf(err)).Inc()
}
