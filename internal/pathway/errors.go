package pathway

import "errors"

var (
	// ErrInvalidPathway — определение без шагов, без ID или
	// с некорректным шагом.
	ErrInvalidPathway = errors.New("invalid pathway definition")

	// ErrPathwayActive — pathway с таким ID уже выполняется.
	ErrPathwayActive = errors.New("pathway already running")
)
