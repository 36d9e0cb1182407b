package status

import (
	"sync"
	"time"
)

// tenths rounds cooldown seconds to one decimal for display.
const tenths = 10

// Store is the single source of truth for the system status record.
//
// Exactly two logical callers mutate it: the event intake path (bus
// handler goroutines) and the HTTP/API path. All mutation goes through
// Update/TryUpdate, which guarantee atomic multi-field updates; readers
// only ever see complete states via Read snapshots.
//
// Thread Safety: all methods are safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	status      Status
	now         func() time.Time
	uptimeStart time.Time

	onChange   func(Snapshot)
	onChangeMu sync.RWMutex
}

// New creates a Store with defaults: idle, zero triggers, auto-trigger
// enabled, and an expired cooldown so the first trigger is immediately
// admissible.
func New(cooldown time.Duration) *Store {
	now := time.Now
	return &Store{
		status: Status{
			CooldownDuration:   cooldown,
			AutoTriggerEnabled: true,
			PortalState:        PortalRotating,
		},
		now:         now,
		uptimeStart: now().UTC(),
	}
}

// SetClock replaces the time source. Intended for tests.
func (st *Store) SetClock(now func() time.Time) {
	st.mu.Lock()
	st.now = now
	st.mu.Unlock()
}

// SetOnChange registers a listener invoked with a fresh snapshot after
// every successful mutation. The listener runs outside the store lock;
// it must not call back into Update from the same goroutine expecting
// ordering guarantees beyond per-mutation delivery.
func (st *Store) SetOnChange(fn func(Snapshot)) {
	st.onChangeMu.Lock()
	st.onChange = fn
	st.onChangeMu.Unlock()
}

// Read returns a consistent snapshot of the full status, with derived
// fields (state, cooldown remaining) computed against the current clock.
func (st *Store) Read() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshotLocked()
}

// Update applies an atomic mutation to the status record and notifies
// the change listener. The mutator receives the current clock reading
// so derived-state decisions and timestamps agree on "now".
func (st *Store) Update(mutate func(s *Status, now time.Time)) {
	st.mu.Lock()
	mutate(&st.status, st.now())
	snap := st.snapshotLocked()
	st.mu.Unlock()

	st.notify(snap)
}

// TryUpdate applies a conditional atomic mutation. The mutator returns
// whether it mutated the record; listeners are only notified when it did.
//
// This is the admission primitive: checking the derived state and
// flipping ScenarioRunning happen under one lock acquisition, so a
// concurrent second trigger can never slip through between the check
// and the flag set.
func (st *Store) TryUpdate(mutate func(s *Status, now time.Time) bool) bool {
	st.mu.Lock()
	mutated := mutate(&st.status, st.now())
	var snap Snapshot
	if mutated {
		snap = st.snapshotLocked()
	}
	st.mu.Unlock()

	if mutated {
		st.notify(snap)
	}
	return mutated
}

// snapshotLocked builds a Snapshot from the current record.
// Caller must hold st.mu.
func (st *Store) snapshotLocked() Snapshot {
	now := st.now()
	s := st.status

	snap := Snapshot{
		State:              s.State(now),
		ScenarioRunning:    s.ScenarioRunning,
		CooldownSeconds:    s.CooldownDuration.Seconds(),
		CooldownRemaining:  roundTenths(s.CooldownRemaining(now).Seconds()),
		TotalTriggers:      s.TotalTriggers,
		LastPersonCount:    s.LastPersonCount,
		AutoTriggerEnabled: s.AutoTriggerEnabled,
		VisitorCount:       s.VisitorCount,
		PortalState:        s.PortalState,
		PortalOnline:       s.PortalOnline,
		LightingAvailable:  s.LightingAvailable,
		BusConnected:       s.BusConnected,
		UptimeStart:        st.uptimeStart,
	}

	// Copy pointer fields so snapshot consumers can't reach shared state.
	if s.LastTriggerTime != nil {
		t := *s.LastTriggerTime
		snap.LastTriggerTime = &t
	}
	if s.PortalLastUpdate != nil {
		t := *s.PortalLastUpdate
		snap.PortalLastUpdate = &t
	}
	if s.LastBusMessage != nil {
		m := *s.LastBusMessage
		snap.LastBusMessage = &m
	}

	return snap
}

// notify delivers a snapshot to the registered change listener, if any.
func (st *Store) notify(snap Snapshot) {
	st.onChangeMu.RLock()
	fn := st.onChange
	st.onChangeMu.RUnlock()
	if fn != nil {
		fn(snap)
	}
}

// roundTenths rounds a seconds value to one decimal place.
func roundTenths(secs float64) float64 {
	return float64(int(secs*tenths+0.5)) / tenths
}
