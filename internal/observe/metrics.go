package observe

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	onlineUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_online_users",
		Help: "Number of sessions that completed nickname negotiation",
	})

	sessionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_sessions_total",
		Help: "Total accepted connections",
	})

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total broadcast messages by label kind",
		},
		[]string{"type"}, // user|server|raw
	)

	droppedMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_dropped_messages_total",
		Help: "Total messages dropped due to client backpressure",
	})

	nicknameRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_nickname_rejections_total",
		Help: "Total rejected nickname attempts",
	})

	disconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_disconnects_total",
			Help: "Total session terminations by reason",
		},
		[]string{"reason"}, // leave|lost|aborted
	)

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_commands_total",
			Help: "Total commands executed by name",
		},
		[]string{"name"},
	)

	commandErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_command_errors_total",
			Help: "Total command errors by reason",
		},
		[]string{"reason"}, // handler|parse
	)
)

func init() {
	prometheus.MustRegister(
		onlineUsers,
		sessionsTotal,
		messagesTotal,
		droppedMessagesTotal,
		nicknameRejectionsTotal,
		disconnectsTotal,
		commandsTotal,
		commandErrorsTotal,
	)
}

func SetOnline(n int)               { onlineUsers.Set(float64(n)) }
func IncSession()                   { sessionsTotal.Inc() }
func IncMessage(kind string)        { messagesTotal.WithLabelValues(kind).Inc() }
func IncDropped()                   { droppedMessagesTotal.Inc() }
func IncNicknameRejected()          { nicknameRejectionsTotal.Inc() }
func IncDisconnect(reason string)   { disconnectsTotal.WithLabelValues(reason).Inc() }
func IncCommand(name string)        { commandsTotal.WithLabelValues(name).Inc() }
func IncCommandError(reason string) { commandErrorsTotal.WithLabelValues(reason).Inc() }
