package scheduler

import "errors"

var (
	// ErrInvalidSchedule — schedule без имени, без расписания либо
	// с некорректным cron-выражением.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrScheduleExists — schedule с таким ID уже сохранён.
	ErrScheduleExists = errors.New("schedule already exists")
)
