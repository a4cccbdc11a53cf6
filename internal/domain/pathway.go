package domain

import "time"

// Pathway — именованная последовательность шагов, выполняемая
// последовательно или параллельно.
//
// Определение неизменяемо: поставляется вызывающим и не мутируется ядром.
type Pathway struct {
	// ID — уникальный идентификатор pathway (ключ live-индекса запусков).
	ID string `json:"pathway_id"`

	// Name — человекочитаемое имя.
	Name string `json:"name"`

	// Description — описание назначения pathway.
	Description string `json:"description,omitempty"`

	// Steps — упорядоченный список шагов.
	Steps []PathwayStep `json:"steps"`

	// Parallel — если true, все шаги стартуют одновременно против
	// независимых копий начального payload.
	Parallel bool `json:"parallel"`

	// CreatedAt — время создания определения.
	CreatedAt time.Time `json:"created_at"`
}

// PathwayStep — один элемент pathway.
type PathwayStep struct {
	// Capability — требуемый тип node.
	Capability CapabilityType `json:"capability_type"`

	// Action — имя действия.
	Action string `json:"action"`

	// Condition — опциональное булево выражение над текущим payload.
	// Ложное условие пропускает шаг, не трогая payload.
	Condition string `json:"condition,omitempty"`

	// TimeoutSec — дедлайн task, собранного из шага.
	TimeoutSec int `json:"timeout_seconds,omitempty"`

	// RetryCount — бюджет повторов (всего попыток RetryCount+1).
	RetryCount int `json:"retry_count"`

	// OnFailure — индекс шага, с которого продолжить выполнение после
	// исчерпания retry. Должен указывать на более поздний шаг; ссылка
	// назад или за пределы списка игнорируется и run останавливается.
	OnFailure *int `json:"on_failure,omitempty"`
}

// StepResult — результат одного шага в рамках run.
type StepResult struct {
	// StepIndex — позиция шага в определении pathway.
	StepIndex int `json:"step_index"`

	// Capability и Action — копии из шага для удобства чтения результата.
	Capability CapabilityType `json:"capability_type"`
	Action     string         `json:"action"`

	// Status — success, failure или skipped.
	Status StepStatus `json:"status"`

	// Result — payload ответа node (только при success).
	Result map[string]any `json:"result,omitempty"`

	// Error — последняя наблюдавшаяся ошибка (только при failure).
	Error string `json:"error,omitempty"`

	// Reason — причина пропуска (только при skipped).
	Reason string `json:"reason,omitempty"`

	// Attempts — фактическое число попыток.
	Attempts int `json:"attempts,omitempty"`

	// DurationMs — длительность последней попытки в миллисекундах.
	DurationMs int64 `json:"duration_ms,omitempty"`
}

// ExecutionContext — изменяемая запись прогресса одного pathway run.
//
// Владеет записью исключительно PathwayExecutor на время run;
// наружу отдаются только снимки. Steps растёт монотонно.
type ExecutionContext struct {
	// PathwayID — идентификатор pathway.
	PathwayID string `json:"pathway_id"`

	// Name — имя pathway.
	Name string `json:"name"`

	// Status — running, completed или failed.
	Status RunStatus `json:"status"`

	// StartedAt — время старта run.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения (nil, пока run идёт).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Steps — результаты шагов. В sequential-режиме — в порядке
	// выполнения; в parallel-режиме — в порядке step index.
	Steps []StepResult `json:"steps"`

	// Error — ошибка оркестрации (только при failed).
	Error string `json:"error,omitempty"`
}

// Clone возвращает снимок контекста с независимым слайсом шагов.
func (c *ExecutionContext) Clone() *ExecutionContext {
	out := *c
	out.Steps = make([]StepResult, len(c.Steps))
	copy(out.Steps, c.Steps)
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
