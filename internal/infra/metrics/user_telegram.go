package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		usersTrackedTotal,
		telegramCommandsReceivedTotal,
		telegramCallbacksReceivedTotal,
		telegramRateLimitTriggeredTotal,
		gateChecksTotal,
		messagesSentTotal,
	)
}

var (
	usersTrackedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_tracked_total",
			Help: "Users seen for the first time.",
		},
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from users.",
		},
		[]string{"command"},
	)

	telegramCallbacksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_callbacks_received_total",
			Help: "Counts inline button presses.",
		},
		[]string{"data"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	gateChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_checks_total",
			Help: "Channel membership checks by result.",
		},
		[]string{"result"}, // 'member', 'denied'
	)

	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Outbound fan-out messages by kind and result.",
		},
		[]string{"kind", "result"}, // kind: 'announce', 'broadcast'
	)
)

func IncUsersTracked() {
	usersTrackedTotal.Inc()
}

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncTelegramCallback(data string) {
	telegramCallbacksReceivedTotal.WithLabelValues(norm(data)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncGateCheck(member bool) {
	if member {
		gateChecksTotal.WithLabelValues("member").Inc()
		return
	}
	gateChecksTotal.WithLabelValues("denied").Inc()
}

func IncMessageSent(kind string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	messagesSentTotal.WithLabelValues(norm(kind), result).Inc()
}
