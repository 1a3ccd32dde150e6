package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Total number of notification records created",
		},
		[]string{"mode"}, // mode: direct, global
	)

	DispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_failures_total",
			Help: "Total number of failed notification inserts",
		},
		[]string{"mode"},
	)

	OverdueNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overdue_notifications_total",
			Help: "Total number of overdue notifications emitted by the scanner",
		},
		[]string{"entity"}, // entity: invoice, stage, task
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overdue_scan_duration_seconds",
			Help:    "Duration of a full overdue scan",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	PushMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_messages_total",
			Help: "Total number of push messages by outcome",
		},
		[]string{"status"}, // status: sent, failed, skipped
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of slow database queries",
		},
	)
)

// IncrementDispatched records one created notification record.
func IncrementDispatched(mode string) {
	NotificationsDispatched.WithLabelValues(mode).Inc()
}

// IncrementDispatchFailure records one failed notification insert.
func IncrementDispatchFailure(mode string) {
	DispatchFailures.WithLabelValues(mode).Inc()
}

// IncrementOverdue records one overdue notification by entity kind.
func IncrementOverdue(entity string) {
	OverdueNotifications.WithLabelValues(entity).Inc()
}

// ObserveScanDuration records the duration of one overdue scan.
func ObserveScanDuration(d time.Duration) {
	ScanDuration.Observe(d.Seconds())
}

// IncrementPush records one push message outcome.
func IncrementPush(status string) {
	PushMessages.WithLabelValues(status).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// IncrementSlowQuery counts a query over the slow threshold.
func IncrementSlowQuery(time.Duration) {
	SlowQueryCount.Inc()
}
