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
			Namespace: "ridebooking",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "status"},
	)

	bookingOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridebooking",
			Name:      "booking_requests_total",
			Help:      "Booking calls by outcome (booked, rejected, failed).",
		},
		[]string{"outcome"},
	)

	storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ridebooking",
			Name:      "store_write_duration_seconds",
			Help:      "Document store write latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"driver", "op", "collection", "result"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridebooking",
			Name:      "notifications_total",
			Help:      "Notification deliveries by sink and result.",
		},
		[]string{"sink", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingOutcomes, storeDuration, notifications)
	})
}

// IncHTTP increments the request counter for a route and status.
func IncHTTP(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

// IncBooking counts one booking call outcome.
func IncBooking(outcome string) {
	bookingOutcomes.WithLabelValues(outcome).Inc()
}

func ObserveStore(driver, op, collection string, err error, dur time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeDuration.WithLabelValues(driver, op, collection, result).Observe(dur.Seconds())
}

func IncNotification(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notifications.WithLabelValues(sink, result).Inc()
}
