package pathway

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"dario.cat/mergo"

	"github.com/shaiso/Dirigent/internal/condition"
	"github.com/shaiso/Dirigent/internal/domain"
)

// Причины пропуска шага.
const (
	// reasonConditionNotMet — условие шага вычислилось в false.
	reasonConditionNotMet = "condition_not_met"

	// reasonConditionError — условие не удалось вычислить.
	// Ошибка вычисления приравнивается к ложному условию.
	reasonConditionError = "condition_error"
)

// runSequential выполняет шаги по порядку, накапливая payload.
//
// Результат успешного шага вливается в payload (ключи шага
// перекрывают существующие), и следующий шаг видит объединённое
// состояние. Провал шага после исчерпания retry останавливает run,
// если on_failure не указывает на более поздний шаг.
func (e *Executor) runSequential(ctx context.Context, ec *domain.ExecutionContext, p *domain.Pathway, payload map[string]any) {
	current := clonePayload(payload)

	i := 0
	for i < len(p.Steps) {
		step := p.Steps[i]

		if step.Condition != "" {
			ok, err := condition.Evaluate(step.Condition, current)
			if err != nil {
				e.logger.Warn("condition evaluation failed, skipping step",
					"pathway_id", p.ID,
					"step", i,
					"condition", step.Condition,
					"error", err)
				e.appendStep(ec, domain.StepResult{
					StepIndex:  i,
					Capability: step.Capability,
					Action:     step.Action,
					Status:     domain.StepStatusSkipped,
					Reason:     reasonConditionError,
				})
				i++
				continue
			}
			if !ok {
				e.logger.Info("step skipped",
					"pathway_id", p.ID,
					"step", i,
					"action", step.Action,
					"condition", step.Condition)
				e.appendStep(ec, domain.StepResult{
					StepIndex:  i,
					Capability: step.Capability,
					Action:     step.Action,
					Status:     domain.StepStatusSkipped,
					Reason:     reasonConditionNotMet,
				})
				i++
				continue
			}
		}

		sr := e.executeStep(ctx, p.ID, i, step, current)
		e.appendStep(ec, sr)

		if sr.Status == domain.StepStatusSuccess {
			if err := mergeResult(&current, sr.Result); err != nil {
				e.failRun(ec, i, step, fmt.Sprintf("merge step result: %v", err))
				return
			}
			i++
			continue
		}

		// Провал после исчерпания retry: либо переход вперёд
		// по on_failure, либо остановка run.
		if step.OnFailure != nil {
			next := *step.OnFailure
			if next > i && next < len(p.Steps) {
				e.logger.Warn("step failed, branching",
					"pathway_id", p.ID,
					"step", i,
					"next_step", next,
					"error", sr.Error)
				i = next
				continue
			}
			e.logger.Warn("step failed, on_failure target invalid",
				"pathway_id", p.ID,
				"step", i,
				"on_failure", next)
		}
		e.failRun(ec, i, step, sr.Error)
		return
	}
}

// runParallel стартует все шаги одновременно, каждый против
// независимой копии начального payload. Результаты фиксируются
// в порядке step index. Провал шага остаётся в его результате
// и не влияет ни на другие шаги, ни на статус run.
func (e *Executor) runParallel(ctx context.Context, ec *domain.ExecutionContext, p *domain.Pathway, payload map[string]any) {
	results := make([]domain.StepResult, len(p.Steps))

	var wg sync.WaitGroup
	for i, step := range p.Steps {
		wg.Add(1)
		go func(i int, step domain.PathwayStep) {
			defer wg.Done()
			local := clonePayload(payload)

			if step.Condition != "" {
				ok, err := condition.Evaluate(step.Condition, local)
				if err != nil {
					e.logger.Warn("condition evaluation failed, skipping step",
						"pathway_id", p.ID,
						"step", i,
						"condition", step.Condition,
						"error", err)
					results[i] = domain.StepResult{
						StepIndex:  i,
						Capability: step.Capability,
						Action:     step.Action,
						Status:     domain.StepStatusSkipped,
						Reason:     reasonConditionError,
					}
					return
				}
				if !ok {
					results[i] = domain.StepResult{
						StepIndex:  i,
						Capability: step.Capability,
						Action:     step.Action,
						Status:     domain.StepStatusSkipped,
						Reason:     reasonConditionNotMet,
					}
					return
				}
			}

			results[i] = e.executeStep(ctx, p.ID, i, step, local)
		}(i, step)
	}
	wg.Wait()

	for _, sr := range results {
		e.appendStep(ec, sr)
	}
}

// executeStep выполняет шаг с retry-бюджетом: всего RetryCount+1
// попыток с фиксированной паузой между ними. Успех любой попытки
// завершает шаг; фиксируется ошибка последней попытки.
func (e *Executor) executeStep(ctx context.Context, pathwayID string, idx int, step domain.PathwayStep, payload map[string]any) domain.StepResult {
	sr := domain.StepResult{
		StepIndex:  idx,
		Capability: step.Capability,
		Action:     step.Action,
	}

	attempts := step.RetryCount + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		sr.Attempts = attempt

		task := domain.NewTask(step.Capability, step.Action, clonePayload(payload))
		task.ID = fmt.Sprintf("%s_step_%d", pathwayID, idx)
		task.TimeoutSec = step.TimeoutSec

		result, err := e.runner.Execute(ctx, task)
		switch {
		case err != nil:
			sr.Error = err.Error()
		case result.IsSuccess():
			sr.Status = domain.StepStatusSuccess
			sr.Result = result.Result
			sr.Error = ""
			sr.DurationMs = result.DurationMs
			return sr
		default:
			sr.Error = result.Error
			sr.DurationMs = result.DurationMs
		}

		if attempt < attempts {
			e.logger.Warn("step attempt failed, retrying",
				"pathway_id", pathwayID,
				"step", idx,
				"attempt", attempt,
				"of", attempts,
				"error", sr.Error)
			select {
			case <-ctx.Done():
				sr.Status = domain.StepStatusFailure
				sr.Error = ctx.Err().Error()
				return sr
			case <-time.After(e.backoff):
			}
		}
	}

	sr.Status = domain.StepStatusFailure
	return sr
}

// appendStep дописывает результат шага в контекст под mu.
func (e *Executor) appendStep(ec *domain.ExecutionContext, sr domain.StepResult) {
	e.mu.Lock()
	ec.Steps = append(ec.Steps, sr)
	e.mu.Unlock()
}

// failRun помечает run проваленным.
func (e *Executor) failRun(ec *domain.ExecutionContext, idx int, step domain.PathwayStep, errMsg string) {
	e.mu.Lock()
	ec.Status = domain.RunStatusFailed
	ec.Error = fmt.Sprintf("step %d (%s) failed: %s", idx, step.Action, errMsg)
	e.mu.Unlock()
}

// clonePayload возвращает независимую поверхностную копию payload.
// Вложенные значения разделяются; шаги обязаны обращаться с ними
// как с read-only.
func clonePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return maps.Clone(payload)
}

// mergeResult вливает результат шага в payload, перекрывая
// существующие ключи ключами результата.
func mergeResult(dst *map[string]any, result map[string]any) error {
	if len(result) == 0 {
		return nil
	}
	return mergo.Merge(dst, result, mergo.WithOverride)
}
