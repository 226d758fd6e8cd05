package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var ( //nolint:gochecknoglobals // Prometheus collectors are package-level by convention
	// WalletFetches counts per-wallet position fetches by result
	// ("success" or "failure").
	WalletFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "position_monitor",
			Name:      "wallet_fetches_total",
			Help:      "Number of per-wallet position fetches, partitioned by result.",
		},
		[]string{"result"},
	)

	// ReportBuildDuration observes end-to-end report build latency in seconds.
	ReportBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "position_monitor",
			Name:      "report_build_duration_seconds",
			Help:      "Time taken to build a full report, fetch included.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// PriceFeedLookups counts price feed lookups by outcome
	// ("hit", "miss" or "error").
	PriceFeedLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "position_monitor",
			Name:      "price_feed_lookups_total",
			Help:      "Number of price feed lookups, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once at startup, before serving /metrics.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		WalletFetches,
		ReportBuildDuration,
		PriceFeedLookups,
	)
}
