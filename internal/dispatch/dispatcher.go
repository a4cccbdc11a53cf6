package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
	"github.com/shaiso/Dirigent/internal/events"
	"github.com/shaiso/Dirigent/internal/invoker"
	"github.com/shaiso/Dirigent/internal/registry"
	"github.com/shaiso/Dirigent/internal/telemetry"
)

const (
	// defaultWorkers — число воркеров, разбирающих очередь.
	defaultWorkers = 4

	// defaultPollInterval — страховочный интервал опроса очереди
	// на случай пропущенного сигнала wake.
	defaultPollInterval = 1 * time.Second

	// maxResults — предел хранимых результатов завершённых task.
	// При переполнении вытесняется самый старый.
	maxResults = 1024
)

// Config — зависимости диспетчера.
type Config struct {
	Registry *registry.Registry
	Invoker  invoker.Invoker

	// Events — необязательный публикатор событий, nil допустим.
	Events *events.Publisher

	Logger *slog.Logger

	// Workers — размер пула воркеров очереди. 0 — значение по умолчанию.
	Workers int
}

// Dispatcher — маршрутизация task на подходящие node.
//
// Принимает task в очередь (Submit) или выполняет синхронно (Execute):
// выбирает активный node с нужной capability по round-robin, вызывает
// его с дедлайном из task и фиксирует результат. Повторов диспетчер
// не делает — retry живёт уровнем выше, в исполнителе pathway.
type Dispatcher struct {
	registry *registry.Registry
	invoker  invoker.Invoker
	events   *events.Publisher
	logger   *slog.Logger
	workers  int

	mu          sync.Mutex
	pending     []*domain.Task
	active      map[string]*domain.Task
	results     map[string]*domain.TaskResult
	resultOrder []string
	rr          map[domain.CapabilityType]int

	wake chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New создаёт Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Dispatcher{
		registry: cfg.Registry,
		invoker:  cfg.Invoker,
		events:   cfg.Events,
		logger:   cfg.Logger,
		workers:  cfg.Workers,
		active:   make(map[string]*domain.Task),
		results:  make(map[string]*domain.TaskResult),
		rr:       make(map[domain.CapabilityType]int),
		wake:     make(chan struct{}, 1),
	}
}

// Submit ставит task в очередь. Порядок извлечения — по убыванию
// priority, внутри одного приоритета FIFO.
func (d *Dispatcher) Submit(task *domain.Task) error {
	if err := validate(task); err != nil {
		return err
	}
	task.ClampPriority()

	d.mu.Lock()
	d.pending = append(d.pending, task)
	d.mu.Unlock()

	d.logger.Info("task queued",
		"task_id", task.ID,
		"capability", task.Capability,
		"action", task.Action,
		"priority", task.Priority)

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return nil
}

// Execute выполняет task синхронно, минуя очередь.
//
// Отсутствие активных node с нужной capability — это failure-результат
// без попытки вызова, а не ошибка: вызывающий всегда получает
// TaskResult, если сама task корректна.
func (d *Dispatcher) Execute(ctx context.Context, task *domain.Task) (*domain.TaskResult, error) {
	if err := validate(task); err != nil {
		return nil, err
	}
	task.ClampPriority()
	return d.run(ctx, task), nil
}

// run выполняет task и фиксирует результат.
func (d *Dispatcher) run(ctx context.Context, task *domain.Task) *domain.TaskResult {
	started := time.Now().UTC()

	d.mu.Lock()
	d.active[task.ID] = task
	d.mu.Unlock()

	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: started,
	}

	node := d.selectNode(task.Capability)
	if node == nil {
		result.Status = domain.TaskStatusFailure
		result.Error = fmt.Sprintf("no nodes available for %s", task.Capability)
		d.logger.Warn("no nodes for task", "task_id", task.ID, "capability", task.Capability)
	} else {
		d.logger.Info("dispatching task",
			"task_id", task.ID,
			"action", task.Action,
			"node_id", node.ID)

		callCtx, cancel := context.WithTimeout(ctx, task.Timeout())
		resp, err := d.invoker.Invoke(callCtx, node, task)
		cancel()

		switch {
		case err != nil:
			result.Status = domain.TaskStatusFailure
			result.Error = err.Error()
		case resp.IsSuccess():
			result.Status = domain.TaskStatusSuccess
			result.Result = resp.Result
		default:
			result.Status = domain.TaskStatusFailure
			result.Error = resp.Error
		}
	}

	result.CompletedAt = time.Now().UTC()
	result.DurationMs = result.CompletedAt.Sub(started).Milliseconds()

	telemetry.TasksExecuted.WithLabelValues(string(result.Status)).Inc()
	telemetry.TaskDuration.Observe(float64(result.DurationMs) / 1000)

	d.mu.Lock()
	delete(d.active, task.ID)
	d.record(result)
	d.mu.Unlock()

	if result.IsSuccess() {
		d.logger.Info("task completed", "task_id", task.ID, "duration_ms", result.DurationMs)
	} else {
		d.logger.Warn("task failed", "task_id", task.ID, "error", result.Error)
	}

	d.events.TaskCompleted(ctx, result)
	return result
}

// selectNode выбирает node для capability по round-robin среди
// активных. Счётчик общий на capability, выбор детерминирован
// при неизменном составе node.
func (d *Dispatcher) selectNode(capability domain.CapabilityType) *domain.Node {
	nodes := d.registry.ByCapability(capability)
	if len(nodes) == 0 {
		return nil
	}

	d.mu.Lock()
	idx := d.rr[capability] % len(nodes)
	d.rr[capability]++
	d.mu.Unlock()

	return &nodes[idx]
}

// record сохраняет результат, вытесняя самый старый при переполнении.
// Повторное выполнение той же task перезаписывает прежний результат.
// Вызывается под mu.
func (d *Dispatcher) record(result *domain.TaskResult) {
	if _, exists := d.results[result.TaskID]; !exists {
		d.resultOrder = append(d.resultOrder, result.TaskID)
		if len(d.resultOrder) > maxResults {
			oldest := d.resultOrder[0]
			d.resultOrder = d.resultOrder[1:]
			delete(d.results, oldest)
		}
	}
	d.results[result.TaskID] = result
}

// Result возвращает результат завершённой task.
func (d *Dispatcher) Result(taskID string) (*domain.TaskResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.results[taskID]
	return r, ok
}

// IsActive сообщает, выполняется ли task прямо сейчас.
func (d *Dispatcher) IsActive(taskID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.active[taskID]
	return ok
}

// Counts возвращает размеры очереди, активного набора и истории
// результатов.
func (d *Dispatcher) Counts() (pending, active, completed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending), len(d.active), len(d.results)
}

// Start запускает пул воркеров очереди.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.logger.Info("dispatcher started", "workers", d.workers)
}

// Stop останавливает воркеры и дожидается их завершения.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

// worker разбирает очередь до отмены контекста.
func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		for {
			task := d.dequeue()
			if task == nil {
				break
			}
			d.run(ctx, task)
		}

		select {
		case <-ctx.Done():
			return
		case <-d.wake:
		case <-ticker.C:
		}
	}
}

// dequeue извлекает task с наибольшим priority, FIFO внутри
// одного приоритета.
func (d *Dispatcher) dequeue() *domain.Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return nil
	}

	best := 0
	for i, t := range d.pending {
		if t.Priority > d.pending[best].Priority {
			best = i
		}
	}
	task := d.pending[best]
	d.pending = append(d.pending[:best], d.pending[best+1:]...)
	return task
}

// validate проверяет минимальную корректность task.
func validate(task *domain.Task) error {
	if task == nil {
		return fmt.Errorf("%w: nil task", ErrInvalidTask)
	}
	if !task.Capability.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCapability, task.Capability)
	}
	if task.Action == "" {
		return fmt.Errorf("%w: empty action", ErrInvalidTask)
	}
	return nil
}
