package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Nodes
	mux.Handle("POST /api/v1/nodes/register", chain(http.HandlerFunc(h.RegisterNode)))
	mux.Handle("GET /api/v1/nodes", chain(http.HandlerFunc(h.ListNodes)))
	mux.Handle("GET /api/v1/nodes/health", chain(http.HandlerFunc(h.NodesHealth)))
	mux.Handle("GET /api/v1/nodes/{id}", chain(http.HandlerFunc(h.GetNode)))
	mux.Handle("DELETE /api/v1/nodes/{id}", chain(http.HandlerFunc(h.UnregisterNode)))
	mux.Handle("POST /api/v1/nodes/{id}/heartbeat", chain(http.HandlerFunc(h.NodeHeartbeat)))

	// Tasks
	mux.Handle("POST /api/v1/tasks", chain(http.HandlerFunc(h.SubmitTask)))
	mux.Handle("POST /api/v1/tasks/execute", chain(http.HandlerFunc(h.ExecuteTask)))
	mux.Handle("GET /api/v1/tasks/{id}", chain(http.HandlerFunc(h.GetTask)))

	// Pathways
	mux.Handle("POST /api/v1/pathways/execute", chain(http.HandlerFunc(h.ExecutePathway)))
	mux.Handle("GET /api/v1/pathways/{id}/status", chain(http.HandlerFunc(h.PathwayStatus)))

	// Schedules
	mux.Handle("GET /api/v1/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("POST /api/v1/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("GET /api/v1/schedules/{id}", chain(http.HandlerFunc(h.GetSchedule)))
	mux.Handle("DELETE /api/v1/schedules/{id}", chain(http.HandlerFunc(h.DeleteSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}/enabled", chain(http.HandlerFunc(h.SetScheduleEnabled)))

	// Metrics summary
	mux.Handle("GET /api/v1/metrics/summary", chain(http.HandlerFunc(h.MetricsSummary)))
}
