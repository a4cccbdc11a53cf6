package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaiso/Dirigent/internal/pathway"
)

// ExecutePathway обрабатывает POST /api/v1/pathways/execute:
// асинхронный запуск pathway.
func (h *Handler) ExecutePathway(w http.ResponseWriter, r *http.Request) {
	var req ExecutePathwayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	// Run переживает HTTP-запрос, контекст запроса не подходит.
	handle, err := h.executor.Begin(context.Background(), &req.Pathway, req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, pathway.ErrInvalidPathway):
			BadRequest(w, err.Error())
		case errors.Is(err, pathway.ErrPathwayActive):
			Conflict(w, err.Error())
		default:
			InternalError(w, h.logger, err)
		}
		return
	}

	Accepted(w, ExecutePathwayResponse{
		PathwayID: handle.PathwayID(),
		Status:    "running",
	})
}

// PathwayStatus обрабатывает GET /api/v1/pathways/{id}/status.
func (h *Handler) PathwayStatus(w http.ResponseWriter, r *http.Request) {
	pathwayID := r.PathValue("id")
	ec, ok := h.executor.Status(pathwayID)
	if !ok {
		NotFound(w, "pathway run not found: "+pathwayID)
		return
	}
	Success(w, ec)
}
