package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
)

func TestCalculateNextDueInterval(t *testing.T) {
	sched := &domain.Schedule{IntervalSec: 300, Timezone: "UTC"}
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue: %v", err)
	}
	want := from.Add(5 * time.Minute)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestCalculateNextDueCron(t *testing.T) {
	sched := &domain.Schedule{CronExpr: "0 * * * *", Timezone: "UTC"}
	from := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue: %v", err)
	}
	want := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestCalculateNextDueCronTimezone(t *testing.T) {
	// Полночь по Москве — 21:00 предыдущего дня по UTC.
	sched := &domain.Schedule{CronExpr: "0 0 * * *", Timezone: "Europe/Moscow"}
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue: %v", err)
	}
	want := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestCalculateNextDueInvalidTimezoneFallsBack(t *testing.T) {
	sched := &domain.Schedule{IntervalSec: 60, Timezone: "Mars/Olympus"}
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue: %v", err)
	}
	if !next.Equal(from.Add(time.Minute)) {
		t.Errorf("next = %v", next)
	}
}

func TestCalculateNextDueNoTrigger(t *testing.T) {
	sched := &domain.Schedule{Timezone: "UTC"}
	if _, err := CalculateNextDue(sched, time.Now()); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("err = %v, want ErrInvalidSchedule", err)
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/5 * * * *"); err != nil {
		t.Errorf("valid expr rejected: %v", err)
	}
	if err := ValidateCronExpr("not a cron"); err == nil {
		t.Error("invalid expr accepted")
	}
}
