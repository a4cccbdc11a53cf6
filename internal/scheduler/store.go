package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Dirigent/internal/domain"
)

// Store — in-memory хранилище schedules.
//
// Schedules живут в памяти процесса вместе с остальным состоянием;
// после рестарта их пересоздаёт вызывающий. Все операции
// потокобезопасны, читатели получают копии.
type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*domain.Schedule
	now     func() time.Time
}

// NewStore создаёт пустой Store.
func NewStore() *Store {
	return &Store{
		entries: make(map[uuid.UUID]*domain.Schedule),
		now:     time.Now,
	}
}

// Create валидирует и сохраняет schedule. Нулевой ID заменяется
// новым; NextDueAt вычисляется от текущего момента.
func (s *Store) Create(sched domain.Schedule) (*domain.Schedule, error) {
	if err := validateSchedule(&sched); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if sched.ID == uuid.Nil {
		sched.ID = uuid.New()
	}
	sched.CreatedAt = now
	sched.UpdatedAt = now

	nextDue, err := CalculateNextDue(&sched, now)
	if err != nil {
		return nil, err
	}
	sched.NextDueAt = nextDue

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[sched.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrScheduleExists, sched.ID)
	}
	s.entries[sched.ID] = &sched

	snapshot := sched
	return &snapshot, nil
}

// Get возвращает копию schedule по ID.
func (s *Store) Get(id uuid.UUID) (*domain.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, exists := s.entries[id]
	if !exists {
		return nil, false
	}
	snapshot := *sched
	return &snapshot, true
}

// List возвращает копии всех schedules, отсортированные по времени
// создания.
func (s *Store) List() []domain.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Schedule, 0, len(s.entries))
	for _, sched := range s.entries {
		out = append(out, *sched)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ListDue возвращает копии enabled schedules с наступившим NextDueAt.
func (s *Store) ListDue(now time.Time) []domain.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Schedule
	for _, sched := range s.entries {
		if sched.IsDue(now) {
			out = append(out, *sched)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NextDueAt.Before(out[j].NextDueAt)
	})
	return out
}

// Delete удаляет schedule. Возвращает false, если он не найден.
func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; !exists {
		return false
	}
	delete(s.entries, id)
	return true
}

// SetEnabled включает или выключает schedule.
func (s *Store) SetEnabled(id uuid.UUID, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, exists := s.entries[id]
	if !exists {
		return false
	}
	sched.Enabled = enabled
	sched.UpdatedAt = s.now().UTC()
	return true
}

// RecordRun фиксирует запуск и следующее время выполнения.
func (s *Store) RecordRun(id uuid.UUID, runID string, ranAt, nextDue time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, exists := s.entries[id]
	if !exists {
		return false
	}
	sched.RecordRun(runID, ranAt, nextDue)
	return true
}

// Count возвращает число schedules.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// validateSchedule проверяет schedule перед сохранением.
func validateSchedule(sched *domain.Schedule) error {
	if sched.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSchedule)
	}
	if sched.IsCron() == sched.IsInterval() {
		return fmt.Errorf("%w: exactly one of cron_expr and interval_sec must be set", ErrInvalidSchedule)
	}
	if sched.IsCron() {
		if err := ValidateCronExpr(sched.CronExpr); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
	}
	if sched.Pathway.ID == "" || len(sched.Pathway.Steps) == 0 {
		return fmt.Errorf("%w: schedule must embed a pathway with steps", ErrInvalidSchedule)
	}
	return nil
}
