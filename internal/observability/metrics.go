package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	sessionCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grouplink",
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "Total commands written to the coordinator.",
		},
		[]string{"verb"},
	)
	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grouplink",
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Total coordinator events dispatched to callbacks.",
		},
		[]string{"kind"},
	)
	dispatchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grouplink",
			Subsystem: "session",
			Name:      "dispatch_errors_total",
			Help:      "Dispatch failures by classification.",
		},
		[]string{"reason"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grouplink",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests on the coordsim admin surface.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grouplink",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(sessionCommands, sessionEvents, dispatchErrors, httpRequests, httpDuration)
	})
}

func RecordCommand(verb string) {
	RegisterMetrics()
	sessionCommands.WithLabelValues(verb).Inc()
}

func RecordEvent(kind string) {
	RegisterMetrics()
	sessionEvents.WithLabelValues(kind).Inc()
}

func RecordDispatchError(reason string) {
	RegisterMetrics()
	dispatchErrors.WithLabelValues(reason).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
