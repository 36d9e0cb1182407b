package scenario

import "errors"

// Domain-specific errors for scenario admission.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAlreadyRunning is returned when a trigger arrives while a
	// sequence is in flight.
	ErrAlreadyRunning = errors.New("scenario: already running")

	// ErrCooldownActive is returned when a trigger arrives inside the
	// cooldown window.
	ErrCooldownActive = errors.New("scenario: cooldown active")
)
