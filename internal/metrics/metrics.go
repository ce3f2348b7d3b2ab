package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "created_total",
			Help:      "Count of bookings created by source.",
		},
		[]string{"source"},
	)

	bookingConflict = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "conflict_total",
			Help:      "Count of rejected booking mutations by conflict kind.",
		},
		[]string{"kind"},
	)

	statusChanged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "status_changed_total",
			Help:      "Count of manual booking status transitions by target status.",
		},
		[]string{"status"},
	)

	sweepRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "sweep_runs_total",
			Help:      "Count of auto-completion sweep invocations.",
		},
	)

	sweepCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "sweep_completed_total",
			Help:      "Count of bookings auto-completed by the sweep.",
		},
	)

	slotRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "slot_requests_total",
			Help:      "Count of slot generation requests by cache outcome.",
		},
		[]string{"outcome"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, path and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingConflict, statusChanged,
			sweepRuns, sweepCompleted, slotRequests, httpDuration)
	})
}

func IncBookingCreated(source string) {
	bookingCreated.WithLabelValues(source).Inc()
}

func IncBookingConflict(kind string) {
	bookingConflict.WithLabelValues(kind).Inc()
}

func IncStatusChanged(status string) {
	statusChanged.WithLabelValues(status).Inc()
}

func ObserveSweep(completed int64) {
	sweepRuns.Inc()
	sweepCompleted.Add(float64(completed))
}

func IncSlotRequest(outcome string) {
	slotRequests.WithLabelValues(outcome).Inc()
}

func ObserveHTTPRequest(method, path string, status int, seconds float64) {
	httpDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(seconds)
}
