// Package status owns the shared system status record for Haunt Core.
//
// This package manages:
//   - The singleton ScenarioStatus record (trigger state, counters,
//     diagnostics, device liveness flags)
//   - Mutex-guarded atomic multi-field mutation
//   - Derived state computation (idle / running / cooldown) evaluated
//     lazily against a clock, no background timers
//   - Change notification for the status publisher
//
// The derived state obeys two rules: a running scenario always reports
// Running regardless of the cooldown timer, and the cooldown window is
// measured from the last admitted trigger, not from sequence completion.
//
// Thread Safety: the Store is safe for concurrent use from the bus
// handler goroutines and the HTTP/API handlers.
package status
