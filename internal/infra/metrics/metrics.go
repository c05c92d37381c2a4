package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(storefrontFetchSeconds, storefrontFetchTotal, storefrontOffers)
}

var (
	storefrontFetchSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_fetch_seconds",
			Help:    "Latency of storefront promotion fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 30},
		},
	)

	storefrontFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_fetch_total",
			Help: "Storefront fetches by result (ok, unavailable, malformed).",
		},
		[]string{"result"},
	)

	storefrontOffers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_offers",
			Help: "Offers seen in the last successful fetch.",
		},
		[]string{"kind"}, // 'free_now', 'coming_soon'
	)
)

func ObserveStorefrontFetch(result string, d time.Duration) {
	storefrontFetchSeconds.Observe(d.Seconds())
	storefrontFetchTotal.WithLabelValues(norm(result)).Inc()
}

func SetStorefrontOffers(freeNow, comingSoon int) {
	storefrontOffers.WithLabelValues("free_now").Set(float64(freeNow))
	storefrontOffers.WithLabelValues("coming_soon").Set(float64(comingSoon))
}
