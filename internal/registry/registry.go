package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
	"github.com/shaiso/Dirigent/internal/telemetry"
)

// Registry — реестр зарегистрированных nodes с отслеживанием живости.
//
// Registry — единственный владелец записей Node: мутации идут только
// через Register/Unregister/Heartbeat/SetStatus. Все операции
// потокобезопасны; читатели получают консистентные копии, никогда —
// частично обновлённую запись.
//
// Порядок регистрации стабилен: ByCapability возвращает nodes в том
// порядке, в котором они были зарегистрированы впервые. Повторная
// регистрация перезаписывает запись, сохраняя позицию.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*domain.Node
	order   []string

	// now подменяется в тестах для проверки классификации живости.
	now func() time.Time

	logger *slog.Logger
}

// New создаёт пустой Registry.
func New(logger *slog.Logger) *Registry {
	return NewWithClock(logger, time.Now)
}

// NewWithClock создаёт Registry с заданным источником времени.
// Нужен тестам классификации живости.
func NewWithClock(logger *slog.Logger, now func() time.Time) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*domain.Node),
		now:     now,
		logger:  logger,
	}
}

// Register регистрирует node (идемпотентный upsert).
//
// Устанавливает status=active и штампует registered_at / last_heartbeat.
// Уже известный node перезаписывается, сохраняя исходную позицию
// в порядке регистрации и исходный registered_at.
func (r *Registry) Register(nodeID string, capability domain.CapabilityType, target string, metadata map[string]any) *domain.Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	node := &domain.Node{
		ID:               nodeID,
		Capability:       capability,
		InvocationTarget: target,
		Metadata:         metadata,
		Status:           domain.NodeStatusActive,
		RegisteredAt:     now,
		LastHeartbeat:    now,
	}

	if prev, exists := r.entries[nodeID]; exists {
		node.RegisteredAt = prev.RegisteredAt
	} else {
		r.order = append(r.order, nodeID)
		telemetry.RegisteredNodes.Inc()
	}
	r.entries[nodeID] = node

	r.logger.Info("node registered",
		"node_id", nodeID,
		"capability", capability,
		"target", target,
	)

	snapshot := *node
	return &snapshot
}

// Unregister удаляет node. Возвращает false, если node не найден.
func (r *Registry) Unregister(nodeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[nodeID]; !exists {
		return false
	}

	delete(r.entries, nodeID)
	for i, id := range r.order {
		if id == nodeID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	telemetry.RegisteredNodes.Dec()

	r.logger.Info("node unregistered", "node_id", nodeID)
	return true
}

// Heartbeat обновляет last_heartbeat и возвращает node в active.
// Возвращает false, если node не найден.
func (r *Registry) Heartbeat(nodeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, exists := r.entries[nodeID]
	if !exists {
		return false
	}

	node.LastHeartbeat = r.now()
	node.Status = domain.NodeStatusActive
	return true
}

// SetStatus переводит node в указанный статус.
// Используется liveness sweep'ом для деактивации молчащих nodes.
func (r *Registry) SetStatus(nodeID string, status domain.NodeStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, exists := r.entries[nodeID]
	if !exists {
		return false
	}

	if node.Status != status {
		r.logger.Info("node status changed",
			"node_id", nodeID,
			"from", node.Status,
			"to", status,
		)
	}
	node.Status = status
	return true
}

// Get возвращает копию node по ID.
func (r *Registry) Get(nodeID string) (*domain.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, exists := r.entries[nodeID]
	if !exists {
		return nil, false
	}

	snapshot := *node
	return &snapshot, true
}

// List возвращает копии всех nodes в порядке регистрации.
func (r *Registry) List() []domain.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Node, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out
}

// ByCapability возвращает активные nodes указанного типа
// в стабильном порядке регистрации.
func (r *Registry) ByCapability(capability domain.CapabilityType) []domain.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Node
	for _, id := range r.order {
		node := r.entries[id]
		if node.Capability == capability && node.IsActive() {
			out = append(out, *node)
		}
	}
	return out
}

// Count возвращает количество зарегистрированных nodes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
