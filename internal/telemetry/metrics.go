package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики и gauges ядра. Регистрируются в default registry,
// отдаются через promhttp.Handler() в cmd/dirigent-api.
var (
	// TasksExecuted — количество выполненных tasks по статусу результата.
	TasksExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dirigent_tasks_executed_total",
		Help: "Total tasks executed by the dispatcher, labeled by result status",
	}, []string{"status"})

	// TaskDuration — длительность выполнения tasks.
	TaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dirigent_task_duration_seconds",
		Help:    "Duration of task executions",
		Buckets: prometheus.DefBuckets,
	})

	// PathwayRuns — количество завершённых pathway runs по статусу.
	PathwayRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dirigent_pathway_runs_total",
		Help: "Total pathway runs finished, labeled by terminal status",
	}, []string{"status"})

	// RegisteredNodes — текущее количество зарегистрированных nodes.
	RegisteredNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dirigent_registered_nodes",
		Help: "Number of currently registered nodes",
	})
)
