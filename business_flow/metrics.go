package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_quotes_created_total",
		Help: "Quotes created by pricing model and client segment",
	}, []string{"model", "segment"})

	quoteFinalPrice = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_quote_final_price",
		Help:    "Final price of created quotes",
		Buckets: []float64{1000, 5000, 10000, 15000, 25000, 50000, 100000, 250000},
	}, []string{"model"})

	quoteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_quote_failures_total",
		Help: "Quote calculations that failed, by error code",
	}, []string{"code"})

	quoteTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_quote_status_transitions_total",
		Help: "Applied quote status transitions by target status and actor",
	}, []string{"to", "actor"})
)
