package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schedule — периодический запуск pathway по cron-выражению или интервалу.
//
// Определение pathway встроено в schedule: хранилища определений нет,
// всё состояние живёт в памяти процесса.
type Schedule struct {
	// ID — уникальный идентификатор schedule.
	ID uuid.UUID `json:"id"`

	// Name — человекочитаемое имя.
	Name string `json:"name"`

	// CronExpr — cron-выражение (пятипольный формат). Пустое, если
	// используется IntervalSec.
	CronExpr string `json:"cron_expr,omitempty"`

	// IntervalSec — фиксированный интервал в секундах. Ноль, если
	// используется CronExpr.
	IntervalSec int `json:"interval_sec,omitempty"`

	// Timezone — IANA timezone для cron-выражений (default: UTC).
	Timezone string `json:"timezone"`

	// Enabled — выключенные schedules не запускаются.
	Enabled bool `json:"enabled"`

	// Pathway — определение pathway для запуска.
	Pathway Pathway `json:"pathway"`

	// InitialPayload — начальный payload каждого run.
	InitialPayload map[string]any `json:"initial_payload,omitempty"`

	// NextDueAt — время следующего запуска.
	NextDueAt time.Time `json:"next_due_at"`

	// LastRunAt — время последнего запуска (nil, если не запускался).
	LastRunAt *time.Time `json:"last_run_at,omitempty"`

	// LastRunID — pathway_id последнего запуска.
	LastRunID string `json:"last_run_id,omitempty"`

	// CreatedAt и UpdatedAt — времена создания и последнего изменения.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCron возвращает true, если schedule задан cron-выражением.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true, если schedule задан интервалом.
func (s *Schedule) IsInterval() bool {
	return s.IntervalSec > 0
}

// IsDue возвращает true, если schedule пора запускать.
func (s *Schedule) IsDue(now time.Time) bool {
	return s.Enabled && !s.NextDueAt.After(now)
}

// RecordRun фиксирует факт запуска и следующее время выполнения.
func (s *Schedule) RecordRun(runID string, ranAt, nextDue time.Time) {
	s.LastRunAt = &ranAt
	s.LastRunID = runID
	s.NextDueAt = nextDue
	s.UpdatedAt = ranAt
}
