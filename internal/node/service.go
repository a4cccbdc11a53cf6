package node

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
	"github.com/shaiso/Dirigent/internal/invoker"
)

// Service — HTTP-поверхность worker node.
//
// Принимает вызовы ядра на POST /invoke и отвечает в формате
// {status, result?, error?}. Ошибка обработчика — это failure-ответ
// с кодом 200: транспорт и логика разделены, не-2xx означает
// проблему самого node.
type Service struct {
	nodeID     string
	capability domain.CapabilityType
	handlers   *Registry
	logger     *slog.Logger

	startedAt     time.Time
	tasksExecuted atomic.Int64
}

// NewService создаёт Service.
func NewService(nodeID string, capability domain.CapabilityType, handlers *Registry, logger *slog.Logger) *Service {
	return &Service{
		nodeID:     nodeID,
		capability: capability,
		handlers:   handlers,
		logger:     logger,
		startedAt:  time.Now().UTC(),
	}
}

// Handler возвращает http.Handler node.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /invoke", s.handleInvoke)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

func (s *Service) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req invoker.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, invoker.Response{
			Status: string(domain.TaskStatusFailure),
			Error:  "malformed request body",
		})
		return
	}

	started := time.Now()
	s.logger.Info("executing task",
		"task_id", req.TaskID,
		"action", req.Action)

	fn, ok := s.handlers.Get(req.Action)
	if !ok {
		s.logger.Warn("unknown action", "task_id", req.TaskID, "action", req.Action)
		writeJSON(w, http.StatusOK, invoker.Response{
			Status: string(domain.TaskStatusFailure),
			Error:  fmt.Sprintf("unknown action: %s", req.Action),
		})
		return
	}

	result, err := fn(r.Context(), req.Payload)
	if err != nil {
		s.logger.Error("task execution failed",
			"task_id", req.TaskID,
			"action", req.Action,
			"error", err)
		writeJSON(w, http.StatusOK, invoker.Response{
			Status: string(domain.TaskStatusFailure),
			Error:  err.Error(),
		})
		return
	}

	s.tasksExecuted.Add(1)
	s.logger.Info("task completed",
		"task_id", req.TaskID,
		"duration_ms", time.Since(started).Milliseconds())

	writeJSON(w, http.StatusOK, invoker.Response{
		Status: string(domain.TaskStatusSuccess),
		Result: result,
	})
}

func (s *Service) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"node_id":         s.nodeID,
		"capability_type": s.capability,
		"uptime_seconds":  time.Since(s.startedAt).Seconds(),
		"tasks_executed":  s.tasksExecuted.Load(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// getString достаёт строковое значение из payload.
func getString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
