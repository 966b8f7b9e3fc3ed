package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shareit",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted into WAITING status.",
		},
	)

	bookingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "booking_decisions_total",
			Help:      "Booking status transitions by outcome.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingsCreated, bookingDecisions)
	})
}

// ObserveHTTP records one handled request.
func ObserveHTTP(endpoint, code string, duration time.Duration) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
	httpDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncBookingCreated counts a successfully created booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingDecision counts an approve/reject transition.
func IncBookingDecision(status string) {
	bookingDecisions.WithLabelValues(status).Inc()
}
