package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(announcerCyclesTotal, announcerNewOffersTotal) }

var (
	announcerCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcer_cycles_total",
			Help: "Announcer poll cycles, labeled by outcome.",
		},
		[]string{"status"}, // 'ok', 'fetch_failed', 'persist_failed', 'skipped'
	)

	announcerNewOffersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "announcer_new_offers_total",
			Help: "Free titles that were announced as new.",
		},
	)
)

func IncAnnouncerCycle(status string) {
	announcerCyclesTotal.WithLabelValues(norm(status)).Inc()
}

func AddNewOffers(n int) {
	announcerNewOffersTotal.Add(float64(n))
}
