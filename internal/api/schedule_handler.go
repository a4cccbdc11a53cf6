package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Dirigent/internal/domain"
	"github.com/shaiso/Dirigent/internal/scheduler"
)

// ListSchedules обрабатывает GET /api/v1/schedules.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules := h.schedules.List()
	List(w, schedules, len(schedules))
}

// CreateSchedule обрабатывает POST /api/v1/schedules.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	created, err := h.schedules.Create(domain.Schedule{
		Name:           req.Name,
		CronExpr:       req.CronExpr,
		IntervalSec:    req.IntervalSec,
		Timezone:       timezone,
		Enabled:        req.Enabled,
		Pathway:        req.Pathway,
		InitialPayload: req.InitialPayload,
	})
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidSchedule) {
			BadRequest(w, err.Error())
			return
		}
		InternalError(w, h.logger, err)
		return
	}
	Created(w, created)
}

// GetSchedule обрабатывает GET /api/v1/schedules/{id}.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	sched, ok := h.schedules.Get(id)
	if !ok {
		NotFound(w, "schedule not found")
		return
	}
	Success(w, sched)
}

// DeleteSchedule обрабатывает DELETE /api/v1/schedules/{id}.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	if !h.schedules.Delete(id) {
		NotFound(w, "schedule not found")
		return
	}
	NoContent(w)
}

// SetScheduleEnabled обрабатывает PUT /api/v1/schedules/{id}/enabled.
func (h *Handler) SetScheduleEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	var req SetEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	if !h.schedules.SetEnabled(id, req.Enabled) {
		NotFound(w, "schedule not found")
		return
	}
	NoContent(w)
}
