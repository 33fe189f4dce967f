// internal/metrics/metrics.go
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	commandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_commands_total",
			Help: "Device commands by command word and result.",
		},
		[]string{"command", "result"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "device_command_duration_seconds",
			Help:    "Duration of device command exchanges including settle delays.",
			Buckets: []float64{0.1, 0.25, 0.5, 0.75, 1, 2, 5, 10},
		},
		[]string{"command"},
	)

	sessionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_session_operations_total",
			Help: "Configuration session operations by operation and status.",
		},
		[]string{"operation", "status"},
	)

	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total requests by endpoint, method, and status.",
		},
		[]string{"endpoint", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(commandCounter, commandDuration, sessionCounter, requestCounter)
}

// ObserveCommand records one command exchange. Write commands are labelled
// by their item id only, keeping values out of the label set.
func ObserveCommand(cmd string, ok bool, err error, duration time.Duration) {
	word := cmd
	if fields := strings.Fields(cmd); len(fields) > 0 {
		word = fields[0]
	}

	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case !ok:
		result = "not_ok"
	}

	commandCounter.WithLabelValues(word, result).Inc()
	commandDuration.WithLabelValues(word).Observe(duration.Seconds())
}

// ObserveSession records the outcome of a session operation.
func ObserveSession(operation string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	sessionCounter.WithLabelValues(operation, status).Inc()
}

// ObserveRequest records an HTTP request.
func ObserveRequest(endpoint, method, status string) {
	requestCounter.WithLabelValues(endpoint, method, status).Inc()
}
