package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

var (
	jobQueueSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "queue_size",
			Help:      "Number of jobs in the queue by status",
		},
		[]string{"status"},
	)

	jobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "processed_total",
			Help:      "Total jobs processed by terminal status",
		},
		[]string{"result"},
	)
)

// recordJobProcessed records a job reaching a terminal status.
func recordJobProcessed(result string) {
	jobsProcessed.WithLabelValues(result).Inc()
}

// RecordQueueStats updates queue size metrics.
func RecordQueueStats(stats *QueueStats) {
	jobQueueSize.WithLabelValues("pending").Set(float64(stats.Pending))
	jobQueueSize.WithLabelValues("processing").Set(float64(stats.Processing))
	jobQueueSize.WithLabelValues("completed").Set(float64(stats.Completed))
	jobQueueSize.WithLabelValues("failed").Set(float64(stats.Failed))
}
