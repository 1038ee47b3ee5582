package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clinic_booking"

var (
	once sync.Once

	bookingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operations_total",
			Help:      "Count of booking lifecycle operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_validation_failures_total",
			Help:      "Count of rejected booking requests by failed rule.",
		},
		[]string{"rule"},
	)

	conflictProbes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_probes_total",
			Help:      "Count of availability probes by axis and result.",
		},
		[]string{"axis", "result"},
	)

	notificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Count of notification rows written by type.",
		},
		[]string{"type"},
	)

	notificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Count of notification events that could not be queued or handled.",
		},
		[]string{"stage"},
	)

	reminderSweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_sweep_duration_seconds",
			Help:      "Duration of reminder sweeps.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingOperations,
			validationFailures,
			conflictProbes,
			notificationsCreated,
			notificationFailures,
			reminderSweepDuration,
		)
	})
}

func IncBookingOperation(operation, outcome string) {
	bookingOperations.WithLabelValues(operation, outcome).Inc()
}

func IncValidationFailure(rule string) {
	validationFailures.WithLabelValues(rule).Inc()
}

// IncProbe records a probe result: "free", "conflict" or "error".
func IncProbe(axis, result string) {
	conflictProbes.WithLabelValues(axis, result).Inc()
}

func AddNotificationsCreated(notificationType string, n int) {
	notificationsCreated.WithLabelValues(notificationType).Add(float64(n))
}

func IncNotificationFailure(stage string) {
	notificationFailures.WithLabelValues(stage).Inc()
}

func ObserveReminderSweep(seconds float64) {
	reminderSweepDuration.Observe(seconds)
}
