package status

import "time"

// State is the derived orchestration state.
//
// Running takes precedence over Cooldown: the cooldown window and the
// running period may overlap in wall-clock time but are mutually
// exclusive in the derived state.
type State string

// Orchestration states.
const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateCooldown State = "cooldown"
)

// PortalState values as reported by the portal device.
const (
	PortalRotating   = 1 // green rotating animation (normal/idle)
	PortalBlinkRed   = 2 // red blink then solid red (triggered/alert)
	PortalBlinkGreen = 3 // green blink (acknowledgment)
)

// BusMessage records the most recent message seen on the bus, for diagnostics.
type BusMessage struct {
	Topic     string    `json:"topic"`
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Status holds the raw, settable fields of the system status record.
//
// Derived values (state, cooldown remaining) are computed against a clock
// at read time; they are never stored.
type Status struct {
	// ScenarioRunning is true for the entire duration of the effect sequence.
	ScenarioRunning bool

	// LastTriggerTime is stamped on successful admission (and re-stamped
	// on operator abort). The cooldown window is measured from here.
	LastTriggerTime *time.Time

	// CooldownDuration is the configured minimum time between admitted
	// triggers.
	CooldownDuration time.Duration

	// TotalTriggers counts admitted triggers; rejected attempts never
	// increment it.
	TotalTriggers int

	// LastPersonCount is the last count reported by the person-detection
	// source. Informational only.
	LastPersonCount int

	// AutoTriggerEnabled gates bus-delivered triggers. Manual triggers
	// are honoured regardless.
	AutoTriggerEnabled bool

	// LastBusMessage is the most recent bus message seen, for diagnostics.
	LastBusMessage *BusMessage

	// VisitorCount is the independently-persisted visitor tally.
	VisitorCount int

	// PortalState is the last state reported by the portal device.
	// May be stale if the device is unreachable.
	PortalState int

	// PortalLastUpdate is when PortalState was last reported.
	PortalLastUpdate *time.Time

	// Liveness flags, updated by periodic or on-demand reachability probes.
	PortalOnline      bool
	LightingAvailable bool
	BusConnected      bool
}

// State derives the orchestration state at the given instant.
func (s Status) State(now time.Time) State {
	if s.ScenarioRunning {
		return StateRunning
	}
	if s.CooldownRemaining(now) > 0 {
		return StateCooldown
	}
	return StateIdle
}

// CooldownRemaining returns how much of the cooldown window is left at the
// given instant, or zero if no cooldown is active.
func (s Status) CooldownRemaining(now time.Time) time.Duration {
	if s.LastTriggerTime == nil {
		return 0
	}
	remaining := s.CooldownDuration - now.Sub(*s.LastTriggerTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Snapshot is an immutable copy of the full system status, including
// derived fields, as broadcast to dashboard observers.
type Snapshot struct {
	State              State       `json:"state"`
	ScenarioRunning    bool        `json:"scenario_running"`
	LastTriggerTime    *time.Time  `json:"last_trigger_time,omitempty"`
	CooldownSeconds    float64     `json:"cooldown_seconds"`
	CooldownRemaining  float64     `json:"cooldown_remaining"`
	TotalTriggers      int         `json:"total_triggers"`
	LastPersonCount    int         `json:"last_person_count"`
	AutoTriggerEnabled bool        `json:"auto_trigger_enabled"`
	LastBusMessage     *BusMessage `json:"last_bus_message,omitempty"`
	VisitorCount       int         `json:"visitor_count"`
	PortalState        int         `json:"portal_state"`
	PortalLastUpdate   *time.Time  `json:"portal_last_update,omitempty"`
	PortalOnline       bool        `json:"portal_online"`
	LightingAvailable  bool        `json:"lighting_available"`
	BusConnected       bool        `json:"bus_connected"`
	UptimeStart        time.Time   `json:"uptime_start"`
}
