package domain

// NodeStatus — статус зарегистрированного node.
type NodeStatus string

const (
	// NodeStatusActive — node активен и участвует в диспетчеризации.
	NodeStatusActive NodeStatus = "active"

	// NodeStatusInactive — node исключён из диспетчеризации
	// (например, liveness sweep пометил его по устаревшему heartbeat).
	NodeStatusInactive NodeStatus = "inactive"
)

// TaskStatus — статус выполнения task.
//
// Task терминален после единственного вызова Execute:
// диспетчер не делает retry, retry — политика вызывающего.
type TaskStatus string

const (
	// TaskStatusSuccess — task выполнен успешно.
	TaskStatusSuccess TaskStatus = "success"

	// TaskStatusFailure — task завершился с ошибкой
	// (нет nodes, транспортная ошибка, таймаут, ошибка на стороне node).
	TaskStatusFailure TaskStatus = "failure"
)

// RunStatus — статус выполнения pathway run.
//
// Жизненный цикл:
//
//	running → completed
//	        ↘ failed
type RunStatus string

const (
	// RunStatusRunning — run в процессе выполнения.
	RunStatusRunning RunStatus = "running"

	// RunStatusCompleted — все шаги обработаны, включая пропуски.
	// В parallel-режиме провалы отдельных шагов статус не меняют:
	// они остаются в результатах шагов.
	RunStatusCompleted RunStatus = "completed"

	// RunStatusFailed — run остановлен досрочно: упавший шаг
	// в sequential-режиме без валидного on_failure либо ошибка
	// самой оркестрации.
	RunStatusFailed RunStatus = "failed"
)

// IsTerminal возвращает true, если статус финальный.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// StepStatus — статус одного шага pathway.
type StepStatus string

const (
	// StepStatusSuccess — шаг выполнен успешно.
	StepStatusSuccess StepStatus = "success"

	// StepStatusFailure — шаг упал после исчерпания retry-бюджета.
	StepStatusFailure StepStatus = "failure"

	// StepStatusSkipped — условие шага не выполнено, шаг пропущен.
	StepStatusSkipped StepStatus = "skipped"
)

// HealthStatus — классификация живости node по возрасту heartbeat.
type HealthStatus string

const (
	// HealthStatusHealthy — heartbeat моложе 30 секунд.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded — heartbeat в возрасте 30–60 секунд.
	HealthStatusDegraded HealthStatus = "degraded"

	// HealthStatusUnhealthy — heartbeat старше 60 секунд или не приходил вовсе.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)
