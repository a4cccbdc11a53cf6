package node

import (
	"context"
	"sort"
	"sync"

	"github.com/shaiso/Dirigent/internal/domain"
)

// HandlerFunc — обработчик одного action.
// Получает payload task и возвращает result либо ошибку.
type HandlerFunc func(ctx context.Context, payload map[string]any) (map[string]any, error)

// Registry — набор обработчиков action одного node.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry создаёт пустой Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register привязывает обработчик к action. Повторная регистрация
// перезаписывает прежний обработчик.
func (r *Registry) Register(action string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = fn
}

// Get возвращает обработчик action.
func (r *Registry) Get(action string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[action]
	return fn, ok
}

// Actions возвращает отсортированный список поддерживаемых action.
// Публикуется в metadata при регистрации node.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.handlers))
	for action := range r.handlers {
		out = append(out, action)
	}
	sort.Strings(out)
	return out
}

// BuiltinHandlers возвращает встроенный набор обработчиков для
// capability. Для типов без встроенного набора возвращается пустой
// Registry: обработчики добавляет вызывающий.
func BuiltinHandlers(capability domain.CapabilityType) *Registry {
	r := NewRegistry()
	switch capability {
	case domain.CapabilityBusiness:
		registerBusinessHandlers(r)
	case domain.CapabilityJob:
		registerJobHandlers(r)
	case domain.CapabilityDeveloper:
		registerDeveloperHandlers(r)
	}
	return r
}
