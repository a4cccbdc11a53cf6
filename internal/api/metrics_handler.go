package api

import "net/http"

// MetricsSummary обрабатывает GET /api/v1/metrics/summary:
// агрегированное состояние ядра одним ответом. Детальные метрики
// отдаёт Prometheus endpoint /metrics.
func (h *Handler) MetricsSummary(w http.ResponseWriter, r *http.Request) {
	pending, active, completed := h.dispatcher.Counts()

	Success(w, MetricsSummaryResponse{
		RegisteredNodes: h.registry.Count(),
		PendingTasks:    pending,
		ActiveTasks:     active,
		CompletedTasks:  completed,
		ActivePathways:  h.executor.ActiveCount(),
		Schedules:       h.schedules.Count(),
	})
}
