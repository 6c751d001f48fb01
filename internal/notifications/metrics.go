package notifications

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

var (
	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Total notification delivery attempts by channel type and outcome",
		},
		[]string{"channel_type", "status"},
	)

	notificationSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "send_duration_seconds",
			Help:      "Time to send notification",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"channel_type"},
	)
)

// recordNotificationSent records a delivery attempt outcome.
func recordNotificationSent(channelType, status string) {
	notificationsSent.WithLabelValues(channelType, status).Inc()
}

// recordNotificationDuration records notification send duration.
func recordNotificationDuration(channelType string, duration time.Duration) {
	notificationSendDuration.WithLabelValues(channelType).Observe(duration.Seconds())
}
