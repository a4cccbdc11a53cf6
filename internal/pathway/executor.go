package pathway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
	"github.com/shaiso/Dirigent/internal/events"
	"github.com/shaiso/Dirigent/internal/telemetry"
)

const (
	// defaultRetryBackoff — пауза между попытками шага.
	defaultRetryBackoff = 1 * time.Second

	// maxHistory — предел хранимых контекстов завершённых run.
	// Старые вытесняются по мере поступления новых.
	maxHistory = 128
)

// Runner выполняет одну task. Реализуется диспетчером.
type Runner interface {
	Execute(ctx context.Context, task *domain.Task) (*domain.TaskResult, error)
}

// Config — зависимости исполнителя pathway.
type Config struct {
	Runner Runner

	// Events — необязательный публикатор событий, nil допустим.
	Events *events.Publisher

	Logger *slog.Logger

	// RetryBackoff — пауза между попытками шага. 0 — значение
	// по умолчанию (1s). Подменяется в тестах.
	RetryBackoff time.Duration
}

// Executor — исполнение pathway: последовательность шагов с условиями,
// retry-бюджетом и ветвлением on_failure, либо параллельный запуск
// всех шагов против независимых копий payload.
//
// Один pathway ID выполняется в единственном экземпляре: повторный
// запуск при живом run — ErrPathwayActive. Контексты завершённых run
// остаются доступными через Status в пределах maxHistory.
type Executor struct {
	runner  Runner
	events  *events.Publisher
	logger  *slog.Logger
	backoff time.Duration

	mu           sync.Mutex
	live         map[string]*domain.ExecutionContext
	history      map[string]*domain.ExecutionContext
	historyOrder []string

	wg sync.WaitGroup
}

// New создаёт Executor.
func New(cfg Config) *Executor {
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	return &Executor{
		runner:  cfg.Runner,
		events:  cfg.Events,
		logger:  cfg.Logger,
		backoff: cfg.RetryBackoff,
		live:    make(map[string]*domain.ExecutionContext),
		history: make(map[string]*domain.ExecutionContext),
	}
}

// Run выполняет pathway синхронно и возвращает снимок финального
// контекста. Ошибка возвращается только за некорректное определение
// или дубликат запуска; неуспех шагов отражается в Status контекста.
func (e *Executor) Run(ctx context.Context, p *domain.Pathway, payload map[string]any) (*domain.ExecutionContext, error) {
	ec, err := e.begin(p)
	if err != nil {
		return nil, err
	}
	e.execute(ctx, ec, p, payload)
	return ec.Clone(), nil
}

// Begin запускает pathway в фоне и возвращает handle запуска.
func (e *Executor) Begin(ctx context.Context, p *domain.Pathway, payload map[string]any) (*Handle, error) {
	ec, err := e.begin(p)
	if err != nil {
		return nil, err
	}

	h := &Handle{pathwayID: p.ID, exec: e, done: make(chan struct{})}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(h.done)
		e.execute(ctx, ec, p, payload)
	}()
	return h, nil
}

// Status возвращает снимок контекста run: живого либо из истории
// завершённых.
func (e *Executor) Status(pathwayID string) (*domain.ExecutionContext, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ec, ok := e.live[pathwayID]; ok {
		return ec.Clone(), true
	}
	if ec, ok := e.history[pathwayID]; ok {
		return ec.Clone(), true
	}
	return nil, false
}

// ActiveCount возвращает число живых run.
func (e *Executor) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.live)
}

// Wait дожидается завершения всех фоновых run.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// begin валидирует определение и регистрирует run в live-индексе.
func (e *Executor) begin(p *domain.Pathway) (*domain.ExecutionContext, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, running := e.live[p.ID]; running {
		return nil, fmt.Errorf("%w: %s", ErrPathwayActive, p.ID)
	}

	ec := &domain.ExecutionContext{
		PathwayID: p.ID,
		Name:      p.Name,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	e.live[p.ID] = ec
	return ec, nil
}

// execute прогоняет шаги и финализирует контекст.
func (e *Executor) execute(ctx context.Context, ec *domain.ExecutionContext, p *domain.Pathway, payload map[string]any) {
	e.logger.Info("pathway started",
		"pathway_id", p.ID,
		"name", p.Name,
		"steps", len(p.Steps),
		"parallel", p.Parallel)

	if p.Parallel {
		e.runParallel(ctx, ec, p, payload)
	} else {
		e.runSequential(ctx, ec, p, payload)
	}

	e.mu.Lock()
	now := time.Now().UTC()
	ec.CompletedAt = &now
	if ec.Status == domain.RunStatusRunning {
		ec.Status = domain.RunStatusCompleted
	}
	delete(e.live, ec.PathwayID)
	e.remember(ec)
	snapshot := ec.Clone()
	e.mu.Unlock()

	telemetry.PathwayRuns.WithLabelValues(string(snapshot.Status)).Inc()
	e.events.PathwayCompleted(ctx, snapshot)

	e.logger.Info("pathway finished",
		"pathway_id", snapshot.PathwayID,
		"status", snapshot.Status,
		"steps_recorded", len(snapshot.Steps))
}

// remember помещает контекст в историю, вытесняя самый старый run
// при переполнении. Вызывается под mu.
func (e *Executor) remember(ec *domain.ExecutionContext) {
	if _, exists := e.history[ec.PathwayID]; !exists {
		e.historyOrder = append(e.historyOrder, ec.PathwayID)
		if len(e.historyOrder) > maxHistory {
			oldest := e.historyOrder[0]
			e.historyOrder = e.historyOrder[1:]
			delete(e.history, oldest)
		}
	}
	e.history[ec.PathwayID] = ec
}

// validate проверяет определение pathway перед запуском.
func validate(p *domain.Pathway) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: missing pathway_id", ErrInvalidPathway)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: pathway %s has no steps", ErrInvalidPathway, p.ID)
	}
	for i, step := range p.Steps {
		if !step.Capability.IsValid() {
			return fmt.Errorf("%w: step %d: unknown capability %q", ErrInvalidPathway, i, step.Capability)
		}
		if step.Action == "" {
			return fmt.Errorf("%w: step %d: empty action", ErrInvalidPathway, i)
		}
		if step.RetryCount < 0 {
			return fmt.Errorf("%w: step %d: negative retry_count", ErrInvalidPathway, i)
		}
	}
	return nil
}

// Handle — ссылка на фоновый run.
type Handle struct {
	pathwayID string
	exec      *Executor
	done      chan struct{}
}

// PathwayID возвращает идентификатор pathway запуска.
func (h *Handle) PathwayID() string {
	return h.pathwayID
}

// Done закрывается по завершении run.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Context возвращает текущий снимок контекста run.
func (h *Handle) Context() (*domain.ExecutionContext, bool) {
	return h.exec.Status(h.pathwayID)
}
