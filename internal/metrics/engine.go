package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query engine and fetch pipeline Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardex",
			Name:      "searches_total",
			Help:      "Total number of search queries",
		},
		[]string{"status"}, // "ok" / "parse_error" / "consistency_fault"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cardex",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds, parse and evaluate combined",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cardex",
			Name:      "search_results",
			Help:      "Number of cards returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardex",
			Name:      "fetches_total",
			Help:      "Total number of set fetches",
		},
		[]string{"set", "status"}, // "ok" / "unchanged" / "error"
	)

	RecordsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardex",
			Name:      "records_skipped_total",
			Help:      "Raw records dropped during normalization",
		},
		[]string{"set"},
	)

	StoreSets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cardex",
			Name:      "store_sets",
			Help:      "Number of sets currently stored",
		},
	)

	StoreCards = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cardex",
			Name:      "store_cards",
			Help:      "Number of cards currently stored",
		},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers the engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(RecordsSkippedTotal)
	prometheus.MustRegister(StoreSets)
	prometheus.MustRegister(StoreCards)
	engineMetricsRegistered = true
}

// RecordSearch counts one search with its outcome and timing.
func RecordSearch(status string, seconds float64, results int) {
	SearchesTotal.WithLabelValues(status).Inc()
	SearchDuration.Observe(seconds)
	if status == "ok" {
		SearchResults.Observe(float64(results))
	}
}

// RecordFetch counts one fetch attempt outcome for a set.
func RecordFetch(setID, status string) {
	FetchesTotal.WithLabelValues(setID, status).Inc()
}

// RecordSkipped counts a raw record dropped during normalization.
func RecordSkipped(setID string) {
	RecordsSkippedTotal.WithLabelValues(setID).Inc()
}

// SetStoreSize publishes the current store stats.
func SetStoreSize(sets, cards int) {
	StoreSets.Set(float64(sets))
	StoreCards.Set(float64(cards))
}
