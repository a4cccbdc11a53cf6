package pathway

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
)

// scriptRunner выполняет task по заданной функции и фиксирует вызовы.
type scriptRunner struct {
	mu      sync.Mutex
	calls   []*domain.Task
	handler func(task *domain.Task) *domain.TaskResult
}

func (r *scriptRunner) Execute(_ context.Context, task *domain.Task) (*domain.TaskResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, task)
	r.mu.Unlock()
	return r.handler(task), nil
}

func (r *scriptRunner) callCount(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.calls {
		if t.Action == action {
			n++
		}
	}
	return n
}

func success(result map[string]any) *domain.TaskResult {
	return &domain.TaskResult{Status: domain.TaskStatusSuccess, Result: result}
}

func failure(msg string) *domain.TaskResult {
	return &domain.TaskResult{Status: domain.TaskStatusFailure, Error: msg}
}

func newExecutor(r Runner) *Executor {
	return New(Config{
		Runner:       r,
		Logger:       slog.New(slog.DiscardHandler),
		RetryBackoff: time.Millisecond,
	})
}

func step(action string) domain.PathwayStep {
	return domain.PathwayStep{Capability: domain.CapabilityBusiness, Action: action}
}

func TestSequentialMergesResults(t *testing.T) {
	var secondPayload map[string]any
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		switch task.Action {
		case "first":
			return success(map[string]any{"plan": "ready"})
		case "second":
			secondPayload = task.Payload
			return success(map[string]any{"funding": "found"})
		}
		return failure("unexpected action " + task.Action)
	}}

	p := &domain.Pathway{
		ID:    "launch",
		Name:  "Launch",
		Steps: []domain.PathwayStep{step("first"), step("second")},
	}

	ec, err := newExecutor(runner).Run(context.Background(), p, map[string]any{"idea": "cafe"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ec.Status != domain.RunStatusCompleted {
		t.Fatalf("status = %s, error = %s", ec.Status, ec.Error)
	}
	if len(ec.Steps) != 2 {
		t.Fatalf("steps recorded = %d", len(ec.Steps))
	}

	// Второй шаг видит исходный payload плюс результат первого.
	if secondPayload["idea"] != "cafe" {
		t.Errorf("initial key lost: %v", secondPayload)
	}
	if secondPayload["plan"] != "ready" {
		t.Errorf("merged key missing: %v", secondPayload)
	}
}

func TestSequentialMergeConflictsFavorStepResult(t *testing.T) {
	var secondPayload map[string]any
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		switch task.Action {
		case "first":
			return success(map[string]any{
				"score": 90,
				"meta":  map[string]any{"stage": "final", "reviewed": true},
			})
		case "second":
			secondPayload = task.Payload
			return success(nil)
		}
		return failure("unexpected action " + task.Action)
	}}

	p := &domain.Pathway{
		ID:    "conflict",
		Steps: []domain.PathwayStep{step("first"), step("second")},
	}

	initial := map[string]any{
		"score": 50,
		"meta":  map[string]any{"stage": "draft", "source": "intake"},
	}
	ec, err := newExecutor(runner).Run(context.Background(), p, initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ec.Status != domain.RunStatusCompleted {
		t.Fatalf("status = %s, error = %s", ec.Status, ec.Error)
	}

	// Конфликтный ключ верхнего уровня берёт значение шага.
	if secondPayload["score"] != 90 {
		t.Errorf("score = %v, want 90", secondPayload["score"])
	}

	// Вложенные map сливаются поэлементно: конфликтные ключи
	// перекрываются, остальные сохраняются.
	meta, ok := secondPayload["meta"].(map[string]any)
	if !ok {
		t.Fatalf("meta = %T", secondPayload["meta"])
	}
	if meta["stage"] != "final" {
		t.Errorf("meta.stage = %v, want final", meta["stage"])
	}
	if meta["source"] != "intake" {
		t.Errorf("meta.source = %v: non-conflicting nested key lost", meta["source"])
	}
	if meta["reviewed"] != true {
		t.Errorf("meta.reviewed = %v", meta["reviewed"])
	}
}

func TestSequentialStopsOnFailure(t *testing.T) {
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		if task.Action == "first" {
			return failure("node exploded")
		}
		return success(nil)
	}}

	p := &domain.Pathway{
		ID:    "halting",
		Steps: []domain.PathwayStep{step("first"), step("second")},
	}

	ec, err := newExecutor(runner).Run(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ec.Status != domain.RunStatusFailed {
		t.Fatalf("status = %s", ec.Status)
	}
	if len(ec.Steps) != 1 {
		t.Fatalf("steps recorded = %d, want 1: run must halt", len(ec.Steps))
	}
	if !strings.Contains(ec.Error, "step 0") || !strings.Contains(ec.Error, "node exploded") {
		t.Errorf("error = %q", ec.Error)
	}
	if runner.callCount("second") != 0 {
		t.Error("step after failure was executed")
	}
}

func TestRetryBudgetExhausted(t *testing.T) {
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		return failure("still broken")
	}}

	flaky := step("flaky")
	flaky.RetryCount = 2
	p := &domain.Pathway{ID: "retrying", Steps: []domain.PathwayStep{flaky}}

	ec, err := newExecutor(runner).Run(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := runner.callCount("flaky"); got != 3 {
		t.Errorf("attempts = %d, want 3 (retry_count=2)", got)
	}
	if ec.Steps[0].Attempts != 3 {
		t.Errorf("recorded attempts = %d", ec.Steps[0].Attempts)
	}
	if ec.Status != domain.RunStatusFailed {
		t.Errorf("status = %s", ec.Status)
	}
}

func TestRetrySucceedsMidBudget(t *testing.T) {
	attempt := 0
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		attempt++
		if attempt < 2 {
			return failure("transient")
		}
		return success(map[string]any{"ok": true})
	}}

	flaky := step("flaky")
	flaky.RetryCount = 5
	p := &domain.Pathway{ID: "recovering", Steps: []domain.PathwayStep{flaky}}

	ec, err := newExecutor(runner).Run(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ec.Status != domain.RunStatusCompleted {
		t.Fatalf("status = %s, error = %s", ec.Status, ec.Error)
	}
	if ec.Steps[0].Attempts != 2 {
		t.Errorf("attempts = %d, want 2: success must stop retries", ec.Steps[0].Attempts)
	}
	if ec.Steps[0].Error != "" {
		t.Errorf("stale error survived success: %q", ec.Steps[0].Error)
	}
}

func TestOnFailureBranchesForward(t *testing.T) {
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		if task.Action == "primary" {
			return failure("no luck")
		}
		return success(nil)
	}}

	primary := step("primary")
	recovery := 2
	primary.OnFailure = &recovery

	p := &domain.Pathway{
		ID:    "branching",
		Steps: []domain.PathwayStep{primary, step("skipped-over"), step("recovery")},
	}

	ec, err := newExecutor(runner).Run(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ec.Status != domain.RunStatusCompleted {
		t.Fatalf("status = %s, error = %s", ec.Status, ec.Error)
	}
	if runner.callCount("skipped-over") != 0 {
		t.Error("step between failure and on_failure target was executed")
	}
	if runner.callCount("recovery") != 1 {
		t.Error("on_failure target was not executed")
	}
	if len(ec.Steps) != 2 || ec.Steps[0].StepIndex != 0 || ec.Steps[1].StepIndex != 2 {
		t.Errorf("recorded steps = %+v", ec.Steps)
	}
}

func TestOnFailureBackwardHalts(t *testing.T) {
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		if task.Action == "second" {
			return failure("broken")
		}
		return success(nil)
	}}

	second := step("second")
	back := 0
	second.OnFailure = &back // ссылка назад, должна игнорироваться

	p := &domain.Pathway{
		ID:    "no-loops",
		Steps: []domain.PathwayStep{step("first"), second},
	}

	ec, err := newExecutor(runner).Run(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ec.Status != domain.RunStatusFailed {
		t.Fatalf("status = %s: backward on_failure must halt the run", ec.Status)
	}
	if runner.callCount("first") != 1 {
		t.Error("backward branch re-executed an earlier step")
	}
}

func TestConditionSkipsStep(t *testing.T) {
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		return success(nil)
	}}

	gated := step("gated")
	gated.Condition = "score >= 70"

	p := &domain.Pathway{
		ID:    "gated",
		Steps: []domain.PathwayStep{gated, step("always")},
	}

	ec, err := newExecutor(runner).Run(context.Background(), p, map[string]any{"score": 50})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ec.Status != domain.RunStatusCompleted {
		t.Fatalf("status = %s", ec.Status)
	}
	if runner.callCount("gated") != 0 {
		t.Error("skipped step was dispatched")
	}
	sr := ec.Steps[0]
	if sr.Status != domain.StepStatusSkipped || sr.Reason != "condition_not_met" {
		t.Errorf("step 0 = %+v", sr)
	}
	if ec.Steps[1].Status != domain.StepStatusSuccess {
		t.Errorf("step after skip = %+v", ec.Steps[1])
	}
}

func TestMalformedConditionSkipsStep(t *testing.T) {
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		return success(nil)
	}}

	bad := step("bad")
	bad.Condition = "score >="

	p := &domain.Pathway{ID: "malformed", Steps: []domain.PathwayStep{bad, step("after")}}

	ec, err := newExecutor(runner).Run(context.Background(), p, map[string]any{"score": 50})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Ошибка вычисления условия приравнивается к ложному условию:
	// шаг пропускается, run продолжается и завершается нормально.
	if ec.Status != domain.RunStatusCompleted {
		t.Fatalf("status = %s, error = %s", ec.Status, ec.Error)
	}
	if runner.callCount("bad") != 0 {
		t.Error("step with malformed condition was dispatched")
	}
	sr := ec.Steps[0]
	if sr.Status != domain.StepStatusSkipped || sr.Reason != "condition_error" {
		t.Errorf("step 0 = %+v", sr)
	}
	if runner.callCount("after") != 1 {
		t.Error("step after malformed condition was not executed")
	}
}

func TestParallelMalformedConditionSkipsStep(t *testing.T) {
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		return success(nil)
	}}

	bad := step("bad")
	bad.Condition = "score >="

	p := &domain.Pathway{
		ID:       "malformed-parallel",
		Parallel: true,
		Steps:    []domain.PathwayStep{bad, step("other")},
	}

	ec, err := newExecutor(runner).Run(context.Background(), p, map[string]any{"score": 50})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ec.Status != domain.RunStatusCompleted {
		t.Fatalf("status = %s, error = %s", ec.Status, ec.Error)
	}
	if runner.callCount("bad") != 0 {
		t.Error("step with malformed condition was dispatched")
	}
	if ec.Steps[0].Status != domain.StepStatusSkipped || ec.Steps[0].Reason != "condition_error" {
		t.Errorf("step 0 = %+v", ec.Steps[0])
	}
	if ec.Steps[1].Status != domain.StepStatusSuccess {
		t.Errorf("step 1 = %+v", ec.Steps[1])
	}
}

func TestParallelIndependentPayloads(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]map[string]any{}
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		if task.Action == "slow" {
			time.Sleep(20 * time.Millisecond)
		}
		mu.Lock()
		seen[task.Action] = task.Payload
		mu.Unlock()
		// Мутация своей копии не должна быть видна другим шагам.
		task.Payload["touched_by"] = task.Action
		if task.Action == "failing" {
			return failure("boom")
		}
		return success(map[string]any{"from": task.Action})
	}}

	p := &domain.Pathway{
		ID:       "fan-out",
		Parallel: true,
		Steps:    []domain.PathwayStep{step("slow"), step("failing"), step("fast")},
	}

	ec, err := newExecutor(runner).Run(context.Background(), p, map[string]any{"idea": "cafe"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Результаты в порядке step index независимо от порядка завершения.
	if len(ec.Steps) != 3 {
		t.Fatalf("steps = %d", len(ec.Steps))
	}
	for i, sr := range ec.Steps {
		if sr.StepIndex != i {
			t.Errorf("step %d recorded with index %d", i, sr.StepIndex)
		}
	}
	if ec.Steps[0].Status != domain.StepStatusSuccess ||
		ec.Steps[1].Status != domain.StepStatusFailure ||
		ec.Steps[2].Status != domain.StepStatusSuccess {
		t.Errorf("statuses = %s/%s/%s", ec.Steps[0].Status, ec.Steps[1].Status, ec.Steps[2].Status)
	}
	// Провал шага живёт в его результате; сам run завершается
	// нормально — в parallel-режиме нет остановки по ошибке.
	if ec.Status != domain.RunStatusCompleted {
		t.Errorf("run status = %s, want completed", ec.Status)
	}

	// Каждый шаг получил собственную копию исходного payload.
	for action, payload := range seen {
		if payload["idea"] != "cafe" {
			t.Errorf("%s payload = %v", action, payload)
		}
		for other, p2 := range seen {
			if other != action && p2["touched_by"] == action {
				t.Errorf("mutation by %s leaked into %s", action, other)
			}
		}
	}
}

func TestDuplicateRunRejected(t *testing.T) {
	release := make(chan struct{})
	runner := &scriptRunner{handler: func(task *domain.Task) *domain.TaskResult {
		<-release
		return success(nil)
	}}
	exec := newExecutor(runner)

	p := &domain.Pathway{ID: "singleton", Steps: []domain.PathwayStep{step("block")}}

	h, err := exec.Begin(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if _, err := exec.Run(context.Background(), p, nil); !errors.Is(err, ErrPathwayActive) {
		t.Errorf("err = %v, want ErrPathwayActive", err)
	}

	close(release)
	<-h.Done()

	// После завершения статус остаётся доступным, а ID снова свободен.
	ec, ok := exec.Status("singleton")
	if !ok || ec.Status != domain.RunStatusCompleted {
		t.Errorf("status after completion: %+v, ok=%v", ec, ok)
	}
	if _, err := exec.Run(context.Background(), p, nil); err != nil {
		t.Errorf("rerun after completion: %v", err)
	}
}

func TestValidateDefinition(t *testing.T) {
	exec := newExecutor(&scriptRunner{handler: func(*domain.Task) *domain.TaskResult {
		return success(nil)
	}})

	cases := []struct {
		name string
		p    *domain.Pathway
	}{
		{"no steps", &domain.Pathway{ID: "empty"}},
		{"no id", &domain.Pathway{Steps: []domain.PathwayStep{step("x")}}},
		{"bad capability", &domain.Pathway{ID: "bad", Steps: []domain.PathwayStep{
			{Capability: "alchemy", Action: "transmute"},
		}}},
		{"empty action", &domain.Pathway{ID: "bad", Steps: []domain.PathwayStep{
			{Capability: domain.CapabilityBusiness},
		}}},
	}
	for _, tc := range cases {
		if _, err := exec.Run(context.Background(), tc.p, nil); !errors.Is(err, ErrInvalidPathway) {
			t.Errorf("%s: err = %v, want ErrInvalidPathway", tc.name, err)
		}
	}
}
