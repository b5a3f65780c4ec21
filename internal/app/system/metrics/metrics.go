// Package metrics holds the Prometheus collectors exported at /metrics.
//
// A Metrics value owns its registry so tests can build isolated instances.
// All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reelfolio"

// Metrics is the application's collector set.
type Metrics struct {
	Registry *prometheus.Registry

	bookingsCreated   prometheus.Counter
	bookingsByStatus  *prometheus.GaugeVec
	notificationsSent *prometheus.CounterVec
	notificationsFail *prometheus.CounterVec
	uploadsStored     *prometheus.CounterVec
	uploadsRejected   *prometheus.CounterVec
	mailDuration      prometheus.Histogram
	jobRuns           *prometheus.CounterVec
}

// New builds and registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Total number of booking requests accepted",
		}),
		bookingsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bookings",
			Help:      "Number of stored bookings by status",
		}, []string{"status"}),
		notificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of notification emails delivered",
		}, []string{"kind"}),
		notificationsFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Total number of notification email attempts that failed",
		}, []string{"kind"}),
		uploadsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_stored_total",
			Help:      "Total number of uploaded files written to storage",
		}, []string{"field"}),
		uploadsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_rejected_total",
			Help:      "Total number of uploads rejected",
		}, []string{"reason"}),
		mailDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mail_send_duration_seconds",
			Help:      "Duration of SMTP send attempts in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Maintenance job runs by job and result",
		}, []string{"job", "result"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.bookingsCreated,
		m.bookingsByStatus,
		m.notificationsSent,
		m.notificationsFail,
		m.uploadsStored,
		m.uploadsRejected,
		m.mailDuration,
		m.jobRuns,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// BookingCreated counts an accepted booking.
func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

// SetBookingCounts replaces the per-status booking gauge.
func (m *Metrics) SetBookingCounts(counts map[string]int64) {
	if m == nil {
		return
	}
	for status, n := range counts {
		m.bookingsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// NotificationSent records a delivered email of the given kind.
func (m *Metrics) NotificationSent(kind string, took time.Duration) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(kind).Inc()
	m.mailDuration.Observe(took.Seconds())
}

// NotificationFailed records a failed send attempt of the given kind.
func (m *Metrics) NotificationFailed(kind string, took time.Duration) {
	if m == nil {
		return
	}
	m.notificationsFail.WithLabelValues(kind).Inc()
	m.mailDuration.Observe(took.Seconds())
}

// UploadStored counts a file written for the named form field.
func (m *Metrics) UploadStored(field string) {
	if m == nil {
		return
	}
	m.uploadsStored.WithLabelValues(field).Inc()
}

// UploadRejected counts an upload refused for reason ("too_large", "type", ...).
func (m *Metrics) UploadRejected(reason string) {
	if m == nil {
		return
	}
	m.uploadsRejected.WithLabelValues(reason).Inc()
}

// JobFinished counts a maintenance job run as "ok" or "error".
func (m *Metrics) JobFinished(name string, _ time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(name, result).Inc()
}
