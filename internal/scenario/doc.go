// Package scenario orchestrates the Halloween effect sequence.
//
// The engine is the only writer of scenario lifecycle state: it admits
// triggers (one at a time, outside the cooldown window), runs the
// five-step effect sequence in a background goroutine, and handles
// operator abort and cooldown reset. Bus intake and device liveness
// probing live here too, since both feed the same state.
//
// # Admission
//
// A trigger is admitted only when the derived state is Idle: no
// sequence in flight and the cooldown window (measured from the
// previous admission) expired. Admission atomically stamps the trigger
// time and increments the trigger counter, so concurrent triggers
// collapse to exactly one run.
//
// # Effect Sequence
//
// Portal red, lights-off scene, timed flicker, lights-on scene, portal
// reset. Device failures are logged and skipped; the sequence always
// advances. Only an operator abort interrupts it, observed at each
// flicker sub-cycle boundary.
package scenario
