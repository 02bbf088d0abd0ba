package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	tasksSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "tasks_submitted_total",
			Help:      "Total tasks accepted into the scheduler",
		},
		[]string{"model"},
	)

	tasksFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "tasks_finished_total",
			Help:      "Total tasks resolved, by outcome",
		},
		[]string{"model", "outcome"},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups, by outcome",
		},
		[]string{"outcome"},
	)

	batchFlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "batch_flushes_total",
			Help:      "Batched invocations executed",
		},
		[]string{"model"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(tasksSubmittedTotal, tasksFinishedTotal, cacheLookupsTotal, batchFlushesTotal, stageDuration)
}
