// Package portal provides the client for the ESP32 LED portal device.
//
// The portal is an autonomous state machine with its own animation
// rendering and distance-sensor triggering; this package only covers its
// network interface: a state query and three state-change commands, each
// a small HTTP request with a short timeout.
//
// Failure contract: a hung or offline device yields an explicit
// ErrUnreachable, never an indefinite block or a panic. Callers treat
// failures as non-fatal: the dashboard's liveness flag, not the call
// site, is the error-reporting channel.
package portal
