package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(dbPoolStats, storageOpSeconds, chatSetSize) }

var (
	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the Postgres connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)

	chatSetSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_set_members",
			Help: "Members of each stored chat set.",
		},
		[]string{"set"}, // 'all_users', 'subscribers'
	)

	storageOpSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_op_seconds",
			Help:    "Latency of storage operations per backend.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op", "success"},
	)
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

func SetChatSetSize(set string, n int) {
	chatSetSize.WithLabelValues(norm(set)).Set(float64(n))
}

// ObserveStorage is meant to be deferred: defer metrics.ObserveStorage("redis", "add", time.Now(), &err).
func ObserveStorage(backend, op string, start time.Time, errp *error) {
	success := "true"
	if errp != nil && *errp != nil {
		success = "false"
	}
	storageOpSeconds.WithLabelValues(norm(backend), norm(op), success).Observe(time.Since(start).Seconds())
}
