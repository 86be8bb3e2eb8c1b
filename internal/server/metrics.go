package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"simpleredis/internal/backend"
	"simpleredis/internal/command"
	"simpleredis/internal/resp"
)

var (
	registerOnce sync.Once

	connectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "simpleredis",
		Name:      "connections_total",
		Help:      "Accepted client connections.",
	})
	connectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "simpleredis",
		Name:      "connections_active",
		Help:      "Currently open client connections.",
	})
	connectionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "simpleredis",
		Name:      "connections_rejected_total",
		Help:      "Connections rejected by the per-IP rate limiter.",
	})
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simpleredis",
			Name:      "commands_total",
			Help:      "Executed commands by name and outcome.",
		},
		[]string{"command", "status"},
	)
	protocolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simpleredis",
			Name:      "protocol_errors_total",
			Help:      "Connections closed because of malformed frames.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(connectionsTotal, connectionsActive, connectionsRejected, commandsTotal, protocolErrors)
	})
}

// RecordCommand 可直接作为 backend.ExecHook 使用；未注册的命令统一记为 unknown
func RecordCommand(name string, reply resp.Frame) {
	RegisterMetrics()
	if _, ok := command.GetCmd(name); !ok {
		name = backend.UnknownCommand
	}
	status := "ok"
	if resp.IsErrorReply(reply) {
		status = "error"
	}
	commandsTotal.WithLabelValues(name, status).Inc()
}

var _ backend.ExecHook = RecordCommand

func recordAccept() {
	RegisterMetrics()
	connectionsTotal.Inc()
	connectionsActive.Inc()
}

func recordClose() {
	connectionsActive.Dec()
}

func recordRejected() {
	RegisterMetrics()
	connectionsRejected.Inc()
}

func recordProtocolError(err error) {
	RegisterMetrics()
	protocolErrors.WithLabelValues(resp.ErrorKind(err)).Inc()
}
