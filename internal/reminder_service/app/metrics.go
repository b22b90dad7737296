package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remindersScheduledCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reminder",
			Name:      "scheduled_total",
			Help:      "Total reminders accepted for scheduling.",
		},
	)

	reminderDeliveriesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reminder",
			Name:      "deliveries_total",
			Help:      "Total reminder delivery attempts by terminal status.",
		},
		[]string{"status"}, // "sent" or "failed"
	)

	reminderDeliveryDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reminder",
			Name:      "delivery_duration_seconds",
			Help:      "Duration of a reminder delivery attempt, provider call included.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
