package api

import (
	"github.com/shaiso/Dirigent/internal/domain"
)

// RegisterNodeRequest — тело POST /api/v1/nodes/register.
type RegisterNodeRequest struct {
	NodeID           string               `json:"node_id"`
	CapabilityType   domain.CapabilityType `json:"capability_type"`
	InvocationTarget string               `json:"invocation_target"`
	Metadata         map[string]any       `json:"metadata,omitempty"`
}

// SubmitTaskRequest — тело POST /api/v1/tasks и /tasks/execute.
type SubmitTaskRequest struct {
	CapabilityType domain.CapabilityType `json:"capability_type"`
	Action         string                `json:"action"`
	Payload        map[string]any        `json:"payload,omitempty"`
	Priority       int                   `json:"priority,omitempty"`
	TimeoutSec     int                   `json:"timeout_seconds,omitempty"`
}

// toTask собирает Task из запроса.
func (r *SubmitTaskRequest) toTask() *domain.Task {
	task := domain.NewTask(r.CapabilityType, r.Action, r.Payload)
	if r.Priority != 0 {
		task.Priority = r.Priority
	}
	task.TimeoutSec = r.TimeoutSec
	return task
}

// TaskStatusResponse — ответ GET /api/v1/tasks/{id} для активной task.
type TaskStatusResponse struct {
	TaskID string `json:"task_id"`
	State  string `json:"state"`
}

// ExecutePathwayRequest — тело POST /api/v1/pathways/execute.
type ExecutePathwayRequest struct {
	Pathway domain.Pathway `json:"pathway"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ExecutePathwayResponse — ответ на запуск pathway.
type ExecutePathwayResponse struct {
	PathwayID string `json:"pathway_id"`
	Status    string `json:"status"`
}

// CreateScheduleRequest — тело POST /api/v1/schedules.
type CreateScheduleRequest struct {
	Name           string         `json:"name"`
	CronExpr       string         `json:"cron_expr,omitempty"`
	IntervalSec    int            `json:"interval_sec,omitempty"`
	Timezone       string         `json:"timezone,omitempty"`
	Enabled        bool           `json:"enabled"`
	Pathway        domain.Pathway `json:"pathway"`
	InitialPayload map[string]any `json:"initial_payload,omitempty"`
}

// SetEnabledRequest — тело PUT /api/v1/schedules/{id}/enabled.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// MetricsSummaryResponse — ответ GET /api/v1/metrics/summary.
type MetricsSummaryResponse struct {
	RegisteredNodes int `json:"registered_nodes"`
	PendingTasks    int `json:"pending_tasks"`
	ActiveTasks     int `json:"active_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	ActivePathways  int `json:"active_pathways"`
	Schedules       int `json:"schedules"`
}
