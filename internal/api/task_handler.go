package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaiso/Dirigent/internal/dispatch"
)

// SubmitTask обрабатывает POST /api/v1/tasks: постановка в очередь.
func (h *Handler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	var req SubmitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	task := req.toTask()
	if err := h.dispatcher.Submit(task); err != nil {
		if errors.Is(err, dispatch.ErrInvalidTask) || errors.Is(err, dispatch.ErrUnknownCapability) {
			BadRequest(w, err.Error())
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Accepted(w, TaskStatusResponse{TaskID: task.ID, State: "queued"})
}

// ExecuteTask обрабатывает POST /api/v1/tasks/execute: синхронное
// выполнение в обход очереди.
func (h *Handler) ExecuteTask(w http.ResponseWriter, r *http.Request) {
	var req SubmitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	result, err := h.dispatcher.Execute(r.Context(), req.toTask())
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidTask) || errors.Is(err, dispatch.ErrUnknownCapability) {
			BadRequest(w, err.Error())
			return
		}
		InternalError(w, h.logger, err)
		return
	}
	Success(w, result)
}

// GetTask обрабатывает GET /api/v1/tasks/{id}: результат либо
// состояние выполнения.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	if result, ok := h.dispatcher.Result(taskID); ok {
		Success(w, result)
		return
	}
	if h.dispatcher.IsActive(taskID) {
		Success(w, TaskStatusResponse{TaskID: taskID, State: "in_progress"})
		return
	}
	NotFound(w, "task not found: "+taskID)
}
