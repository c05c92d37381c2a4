package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminCommandTotal, adminAPIAuthTotal) }

var (
	// status: authorized | unauthorized
	adminCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_command_total",
			Help: "Admin bot commands by caller authorization.",
		},
		[]string{"command", "status"},
	)

	// result: ok | missing | invalid | disabled
	adminAPIAuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_api_auth_total",
			Help: "Admin API token checks by result.",
		},
		[]string{"result"},
	)
)

func IncAdminCommand(command, status string) {
	adminCommandTotal.WithLabelValues(norm(command), norm(status)).Inc()
}

func IncAdminAPIAuth(result string) {
	adminAPIAuthTotal.WithLabelValues(norm(result)).Inc()
}
