package sim

import "errors"

var (
	// ErrStopped is returned by command helpers once the runner loop has exited.
	ErrStopped = errors.New("runner stopped")

	// ErrInvalidScenario is returned when a scenario file fails validation.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrUnknownAction is returned for an unrecognized scenario action.
	ErrUnknownAction = errors.New("unknown scenario action")
)
