package portal

import "errors"

// Domain-specific errors for portal device operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnreachable is returned when the device cannot be reached
	// (connection refused, DNS failure, timeout).
	ErrUnreachable = errors.New("portal: device unreachable")

	// ErrBadResponse is returned when the device answers with a non-200
	// status or an unparseable body.
	ErrBadResponse = errors.New("portal: unexpected device response")
)
