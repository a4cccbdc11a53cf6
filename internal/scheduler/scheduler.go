package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
	"github.com/shaiso/Dirigent/internal/pathway"
	"github.com/shaiso/Dirigent/internal/registry"
)

const (
	// defaultTickInterval — период проверки due schedules.
	defaultTickInterval = 5 * time.Second

	// defaultSweepInterval — период liveness sweep реестра.
	defaultSweepInterval = 30 * time.Second
)

// Starter запускает pathway в фоне. Реализуется pathway.Executor.
type Starter interface {
	Begin(ctx context.Context, p *domain.Pathway, payload map[string]any) (*pathway.Handle, error)
}

// Config — конфигурация Scheduler.
type Config struct {
	Store    *Store
	Starter  Starter
	Registry *registry.Registry
	Logger   *slog.Logger

	// TickInterval и SweepInterval — периоды циклов.
	// 0 — значения по умолчанию.
	TickInterval  time.Duration
	SweepInterval time.Duration
}

// Scheduler — периодические запуски pathway и liveness sweep.
//
// Каждый тик находит due schedules и запускает встроенный в них
// pathway под уникальным run ID. Sweep деактивирует nodes, чей
// heartbeat старше порога unhealthy; heartbeat возвращает их в active.
type Scheduler struct {
	store    *Store
	starter  Starter
	registry *registry.Registry
	logger   *slog.Logger

	tickInterval  time.Duration
	sweepInterval time.Duration

	// now подменяется в тестах.
	now func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New создаёт Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	return &Scheduler{
		store:         cfg.Store,
		starter:       cfg.Starter,
		registry:      cfg.Registry,
		logger:        cfg.Logger,
		tickInterval:  cfg.TickInterval,
		sweepInterval: cfg.SweepInterval,
		now:           time.Now,
	}
}

// Start запускает циклы тиков и sweep.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()

	s.logger.Info("scheduler started",
		"tick_interval", s.tickInterval,
		"sweep_interval", s.sweepInterval)
}

// Stop останавливает циклы и дожидается их завершения.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// Tick обрабатывает due schedules. Ошибка одного schedule
// не блокирует остальные.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now().UTC()
	due := s.store.ListDue(now)
	if len(due) == 0 {
		return
	}

	started := 0
	for i := range due {
		if s.processSchedule(ctx, &due[i], now) {
			started++
		}
	}

	s.logger.Info("scheduler tick completed", "due", len(due), "runs_started", started)
}

// processSchedule запускает один due schedule. Возвращает true,
// если run стартовал.
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.Schedule, now time.Time) bool {
	// Run ID уникален на пару (pathway, срок запуска): повторный тик
	// до пересчёта NextDueAt не породит второй запуск.
	runID := fmt.Sprintf("%s_%d", sched.Pathway.ID, sched.NextDueAt.Unix())

	run := sched.Pathway
	run.ID = runID

	var payload map[string]any
	if sched.InitialPayload != nil {
		payload = maps.Clone(sched.InitialPayload)
	}

	startedRun := true
	if _, err := s.starter.Begin(ctx, &run, payload); err != nil {
		startedRun = false
		switch {
		case errors.Is(err, pathway.ErrPathwayActive):
			s.logger.Warn("scheduled pathway still running, skipping",
				"schedule_id", sched.ID,
				"run_id", runID)
		case errors.Is(err, pathway.ErrInvalidPathway):
			s.logger.Error("schedule embeds invalid pathway, disabling",
				"schedule_id", sched.ID,
				"error", err)
			s.store.SetEnabled(sched.ID, false)
			return false
		default:
			s.logger.Error("start scheduled pathway",
				"schedule_id", sched.ID,
				"error", err)
		}
	}

	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		s.logger.Error("calculate next due, disabling schedule",
			"schedule_id", sched.ID,
			"error", err)
		s.store.SetEnabled(sched.ID, false)
		return startedRun
	}

	s.store.RecordRun(sched.ID, runID, now, nextDue)

	if startedRun {
		s.logger.Info("started scheduled pathway",
			"schedule_id", sched.ID,
			"schedule_name", sched.Name,
			"run_id", runID,
			"next_due_at", nextDue)
	}
	return startedRun
}

// Sweep деактивирует nodes, молчащие дольше порога unhealthy.
func (s *Scheduler) Sweep() {
	deactivated := 0
	for nodeID, report := range s.registry.HealthSnapshot() {
		if report.Status != domain.HealthStatusUnhealthy {
			continue
		}
		node, ok := s.registry.Get(nodeID)
		if !ok || node.Status == domain.NodeStatusInactive {
			continue
		}
		if s.registry.SetStatus(nodeID, domain.NodeStatusInactive) {
			deactivated++
			s.logger.Warn("node deactivated by liveness sweep",
				"node_id", nodeID,
				"last_heartbeat", report.LastHeartbeat)
		}
	}
	if deactivated > 0 {
		s.logger.Info("liveness sweep completed", "deactivated", deactivated)
	}
}
