package parallel

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of a LocalScheduler. All vectors are
// labelled by task name (the kernel, e.g. "mean" or "transform").
type Metrics struct {
	TasksSubmitted *prometheus.CounterVec
	TasksFailed    *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	TasksInFlight  prometheus.Gauge
}

// NewMetrics creates and registers all scheduler metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blockscale_scheduler_tasks_submitted_total",
		Help: "Total block tasks submitted to the scheduler",
	}, []string{"task"})

	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blockscale_scheduler_tasks_failed_total",
		Help: "Total block tasks that returned an error or panicked",
	}, []string{"task"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blockscale_scheduler_task_duration_seconds",
		Help:    "Execution time of block tasks",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"task"})

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "blockscale_scheduler_tasks_in_flight",
		Help: "Block tasks currently holding a worker slot",
	})

	reg.MustRegister(submitted, failed, duration, inFlight)

	return &Metrics{
		TasksSubmitted: submitted,
		TasksFailed:    failed,
		TaskDuration:   duration,
		TasksInFlight:  inFlight,
	}
}
