package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
	"github.com/shaiso/Dirigent/internal/pathway"
	"github.com/shaiso/Dirigent/internal/registry"
)

// fakeStarter фиксирует запуски и возвращает заданную ошибку.
type fakeStarter struct {
	mu   sync.Mutex
	runs []string // pathway IDs запусков
	err  error
}

func (f *fakeStarter) Begin(_ context.Context, p *domain.Pathway, _ map[string]any) (*pathway.Handle, error) {
	f.mu.Lock()
	f.runs = append(f.runs, p.ID)
	f.mu.Unlock()
	return nil, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testPathway(id string) domain.Pathway {
	return domain.Pathway{
		ID:   id,
		Name: id,
		Steps: []domain.PathwayStep{
			{Capability: domain.CapabilityBusiness, Action: "validate-idea"},
		},
	}
}

func TestStoreCreateValidation(t *testing.T) {
	store := NewStore()

	cases := []struct {
		name  string
		sched domain.Schedule
	}{
		{"no name", domain.Schedule{IntervalSec: 60, Pathway: testPathway("p")}},
		{"no trigger", domain.Schedule{Name: "s", Pathway: testPathway("p")}},
		{"both triggers", domain.Schedule{Name: "s", CronExpr: "* * * * *", IntervalSec: 60, Pathway: testPathway("p")}},
		{"bad cron", domain.Schedule{Name: "s", CronExpr: "nope", Pathway: testPathway("p")}},
		{"no pathway", domain.Schedule{Name: "s", IntervalSec: 60}},
	}
	for _, tc := range cases {
		if _, err := store.Create(tc.sched); !errors.Is(err, ErrInvalidSchedule) {
			t.Errorf("%s: err = %v, want ErrInvalidSchedule", tc.name, err)
		}
	}
}

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()

	created, err := store.Create(domain.Schedule{
		Name:        "nightly",
		IntervalSec: 3600,
		Enabled:     true,
		Pathway:     testPathway("nightly-report"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.NextDueAt.IsZero() {
		t.Error("NextDueAt not computed on create")
	}

	got, ok := store.Get(created.ID)
	if !ok || got.Name != "nightly" {
		t.Fatalf("Get: %+v, ok=%v", got, ok)
	}

	if n := len(store.List()); n != 1 {
		t.Errorf("List len = %d", n)
	}

	if !store.SetEnabled(created.ID, false) {
		t.Error("SetEnabled failed")
	}
	got, _ = store.Get(created.ID)
	if got.Enabled {
		t.Error("schedule still enabled")
	}

	if !store.Delete(created.ID) {
		t.Error("Delete failed")
	}
	if store.Delete(created.ID) {
		t.Error("double delete succeeded")
	}
	if store.Count() != 0 {
		t.Error("store not empty")
	}
}

func TestTickStartsDueSchedules(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	store := NewStore()
	store.now = func() time.Time { return base }

	created, err := store.Create(domain.Schedule{
		Name:        "every-minute",
		IntervalSec: 60,
		Enabled:     true,
		Pathway:     testPathway("heartbeat-report"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	starter := &fakeStarter{}
	s := New(Config{
		Store:    store,
		Starter:  starter,
		Registry: registry.New(discardLogger()),
		Logger:   discardLogger(),
	})

	// До срока тик ничего не запускает.
	s.now = func() time.Time { return base.Add(30 * time.Second) }
	s.Tick(context.Background())
	if len(starter.runs) != 0 {
		t.Fatalf("premature runs: %v", starter.runs)
	}

	// После срока запускается run с уникальным ID.
	due := created.NextDueAt
	s.now = func() time.Time { return base.Add(61 * time.Second) }
	s.Tick(context.Background())
	if len(starter.runs) != 1 {
		t.Fatalf("runs = %v", starter.runs)
	}
	wantID := fmt.Sprintf("heartbeat-report_%d", due.Unix())
	if starter.runs[0] != wantID {
		t.Errorf("run id = %s, want %s", starter.runs[0], wantID)
	}

	// Schedule перепланирован, факт запуска зафиксирован.
	got, _ := store.Get(created.ID)
	if got.LastRunID != wantID {
		t.Errorf("last_run_id = %s", got.LastRunID)
	}
	if !got.NextDueAt.After(due) {
		t.Errorf("next_due_at not advanced: %v", got.NextDueAt)
	}

	// Повторный тик до нового срока не порождает второй запуск.
	s.Tick(context.Background())
	if len(starter.runs) != 1 {
		t.Errorf("duplicate run: %v", starter.runs)
	}
}

func TestTickReschedulesWhenPathwayActive(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	store := NewStore()
	store.now = func() time.Time { return base }

	created, err := store.Create(domain.Schedule{
		Name:        "busy",
		IntervalSec: 60,
		Enabled:     true,
		Pathway:     testPathway("long-running"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	starter := &fakeStarter{err: pathway.ErrPathwayActive}
	s := New(Config{
		Store:    store,
		Starter:  starter,
		Registry: registry.New(discardLogger()),
		Logger:   discardLogger(),
	})
	s.now = func() time.Time { return base.Add(61 * time.Second) }
	s.Tick(context.Background())

	// Запуск не состоялся, но срок пересчитан: тик не зацикливается.
	got, _ := store.Get(created.ID)
	if !got.NextDueAt.After(created.NextDueAt) {
		t.Error("next_due_at not advanced after skipped run")
	}
	if !got.Enabled {
		t.Error("schedule disabled on transient skip")
	}
}

func TestSweepDeactivatesSilentNodes(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := base
	reg := registry.NewWithClock(discardLogger(), func() time.Time { return now })

	reg.Register("quiet", domain.CapabilityBusiness, "http://quiet:9000/invoke", nil)
	reg.Register("chatty", domain.CapabilityBusiness, "http://chatty:9000/invoke", nil)

	s := New(Config{
		Store:    NewStore(),
		Starter:  &fakeStarter{},
		Registry: reg,
		Logger:   discardLogger(),
	})

	// chatty шлёт heartbeat, quiet молчит дольше минуты.
	now = base.Add(45 * time.Second)
	reg.Heartbeat("chatty")
	now = base.Add(61 * time.Second)
	s.Sweep()

	quiet, _ := reg.Get("quiet")
	if quiet.Status != domain.NodeStatusInactive {
		t.Errorf("quiet status = %s, want inactive", quiet.Status)
	}
	chatty, _ := reg.Get("chatty")
	if chatty.Status != domain.NodeStatusActive {
		t.Errorf("chatty status = %s, want active", chatty.Status)
	}

	// Heartbeat возвращает node в ротацию.
	reg.Heartbeat("quiet")
	quiet, _ = reg.Get("quiet")
	if quiet.Status != domain.NodeStatusActive {
		t.Errorf("quiet after heartbeat = %s", quiet.Status)
	}
}
