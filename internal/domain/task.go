package domain

import (
	"time"

	"github.com/google/uuid"
)

// Лимиты и значения по умолчанию для Task.
const (
	DefaultTaskPriority   = 5
	DefaultTaskTimeoutSec = 300

	MinTaskPriority = 1
	MaxTaskPriority = 10
)

// Task — единичный запрос действия с payload, диспетчеризуемый
// ровно на один node.
//
// Task неизменяем после создания: создаётся отправителем, потребляется
// диспетчером, после записи результата больше не используется.
type Task struct {
	// ID — уникальный идентификатор task.
	// Уникальность — ответственность создателя; повторная отправка
	// одного ID — неопределённое поведение.
	ID string `json:"task_id"`

	// Capability — требуемый тип node.
	Capability CapabilityType `json:"capability_type"`

	// Action — имя действия, которое node должен выполнить.
	Action string `json:"action"`

	// Payload — входные данные действия.
	Payload map[string]any `json:"payload,omitempty"`

	// Priority — приоритет 1–10 (10 — наивысший).
	Priority int `json:"priority"`

	// TimeoutSec — дедлайн вызова node в секундах.
	TimeoutSec int `json:"timeout_seconds"`

	// CreatedAt — время создания task.
	CreatedAt time.Time `json:"created_at"`
}

// NewTask создаёт Task с uuid-идентификатором и значениями по умолчанию.
func NewTask(capability CapabilityType, action string, payload map[string]any) *Task {
	return &Task{
		ID:         uuid.NewString(),
		Capability: capability,
		Action:     action,
		Payload:    payload,
		Priority:   DefaultTaskPriority,
		TimeoutSec: DefaultTaskTimeoutSec,
		CreatedAt:  time.Now(),
	}
}

// Timeout возвращает дедлайн вызова как time.Duration.
// Нулевой или отрицательный TimeoutSec заменяется значением по умолчанию.
func (t *Task) Timeout() time.Duration {
	sec := t.TimeoutSec
	if sec <= 0 {
		sec = DefaultTaskTimeoutSec
	}
	return time.Duration(sec) * time.Second
}

// ClampPriority приводит приоритет к допустимому диапазону.
func (t *Task) ClampPriority() {
	if t.Priority < MinTaskPriority {
		t.Priority = DefaultTaskPriority
	}
	if t.Priority > MaxTaskPriority {
		t.Priority = MaxTaskPriority
	}
}

// TaskResult — результат единственного выполнения task.
//
// Создаётся ровно один раз на вызов Execute и после создания не мутируется.
type TaskResult struct {
	// TaskID — идентификатор исходного task.
	TaskID string `json:"task_id"`

	// Status — success или failure.
	Status TaskStatus `json:"status"`

	// Result — полезная нагрузка ответа node (только при success).
	Result map[string]any `json:"result,omitempty"`

	// Error — описание ошибки (только при failure).
	Error string `json:"error,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения.
	CompletedAt time.Time `json:"completed_at"`

	// DurationMs — длительность выполнения в миллисекундах.
	DurationMs int64 `json:"duration_ms"`
}

// IsSuccess возвращает true, если task выполнен успешно.
func (r *TaskResult) IsSuccess() bool {
	return r.Status == TaskStatusSuccess
}
