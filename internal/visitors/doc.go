// Package visitors persists the running visitor count.
//
// The count is the only durable state in the system: scenario state is
// process-memory and resets on restart, but the tally of admitted
// visitors survives. Storage is a single-row SQLite table written
// through a small repository interface so the scenario engine and the
// HTTP handlers never see SQL.
package visitors
