package lighting

import "errors"

// Domain-specific errors for lighting controller operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDisabled is returned when the client was built without a
	// controller URL and runs in degraded mode.
	ErrDisabled = errors.New("lighting: controller not configured")

	// ErrUnreachable is returned when the controller cannot be reached
	// (connection refused, DNS failure, timeout).
	ErrUnreachable = errors.New("lighting: controller unreachable")

	// ErrBadResponse is returned when the controller answers with an
	// unexpected status or an unparseable body.
	ErrBadResponse = errors.New("lighting: unexpected controller response")
)
