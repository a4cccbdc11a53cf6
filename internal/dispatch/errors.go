package dispatch

import "errors"

var (
	// ErrInvalidTask — task без action либо nil.
	ErrInvalidTask = errors.New("invalid task")

	// ErrUnknownCapability — capability_type task не входит
	// в известный набор.
	ErrUnknownCapability = errors.New("unknown capability type")
)
