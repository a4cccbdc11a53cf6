package api

import (
	"log/slog"

	"github.com/shaiso/Dirigent/internal/dispatch"
	"github.com/shaiso/Dirigent/internal/events"
	"github.com/shaiso/Dirigent/internal/pathway"
	"github.com/shaiso/Dirigent/internal/registry"
	"github.com/shaiso/Dirigent/internal/scheduler"
)

// Handler — HTTP handlers API ядра.
type Handler struct {
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	executor   *pathway.Executor
	schedules  *scheduler.Store

	// events — необязательный публикатор, nil допустим.
	events *events.Publisher

	logger *slog.Logger
}

// Config — конфигурация Handler.
type Config struct {
	Registry   *registry.Registry
	Dispatcher *dispatch.Dispatcher
	Executor   *pathway.Executor
	Schedules  *scheduler.Store
	Events     *events.Publisher
	Logger     *slog.Logger
}

// New создаёт Handler.
func New(cfg Config) *Handler {
	return &Handler{
		registry:   cfg.Registry,
		dispatcher: cfg.Dispatcher,
		executor:   cfg.Executor,
		schedules:  cfg.Schedules,
		events:     cfg.Events,
		logger:     cfg.Logger,
	}
}
