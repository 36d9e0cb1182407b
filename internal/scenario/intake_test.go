package scenario

import (
	"testing"

	"github.com/nerrad567/haunt-core/internal/status"
)

func newTestIntake(t *testing.T) (*Intake, *testEngine) {
	t.Helper()
	te := newTestEngine(t)
	return NewIntake(te.engine, te.store, testLogger()), te
}

func TestHandlePersonCount_TriggersWhenIdle(t *testing.T) {
	intake, te := newTestIntake(t)

	if err := intake.HandlePersonCount("frigate/entrance/person", []byte("2")); err != nil {
		t.Fatalf("HandlePersonCount() error = %v", err)
	}
	waitForSettled(t, te.store)

	snap := te.store.Read()
	if snap.TotalTriggers != 1 {
		t.Errorf("total_triggers = %d, want 1", snap.TotalTriggers)
	}
	if snap.LastPersonCount != 2 {
		t.Errorf("last_person_count = %d, want 2", snap.LastPersonCount)
	}
	if snap.LastBusMessage == nil || snap.LastBusMessage.Payload != "2" {
		t.Errorf("last_bus_message = %+v, want recorded payload \"2\"", snap.LastBusMessage)
	}
}

func TestHandlePersonCount_ZeroDoesNotTrigger(t *testing.T) {
	intake, te := newTestIntake(t)

	if err := intake.HandlePersonCount("frigate/entrance/person", []byte("0")); err != nil {
		t.Fatalf("HandlePersonCount() error = %v", err)
	}

	snap := te.store.Read()
	if snap.TotalTriggers != 0 {
		t.Errorf("total_triggers = %d, want 0 (count 0 is not a trigger)", snap.TotalTriggers)
	}
	if snap.LastPersonCount != 0 {
		t.Errorf("last_person_count = %d, want 0", snap.LastPersonCount)
	}
	if snap.LastBusMessage == nil {
		t.Error("bus message not recorded for count 0")
	}
}

func TestHandlePersonCount_Malformed(t *testing.T) {
	intake, te := newTestIntake(t)

	if err := intake.HandlePersonCount("frigate/entrance/person", []byte("banana")); err == nil {
		t.Error("HandlePersonCount() = nil on malformed payload, want parse error")
	}

	snap := te.store.Read()
	if snap.TotalTriggers != 0 {
		t.Errorf("total_triggers = %d, want 0", snap.TotalTriggers)
	}
	// Malformed payloads are still recorded for diagnostics.
	if snap.LastBusMessage == nil || snap.LastBusMessage.Payload != "banana" {
		t.Errorf("last_bus_message = %+v, want recorded malformed payload", snap.LastBusMessage)
	}
}

func TestHandlePersonCount_AutoTriggerDisabled(t *testing.T) {
	intake, te := newTestIntake(t)
	te.engine.ToggleAutoTrigger() // now disabled

	if err := intake.HandlePersonCount("frigate/entrance/person", []byte("3")); err != nil {
		t.Fatalf("HandlePersonCount() error = %v", err)
	}

	snap := te.store.Read()
	if snap.TotalTriggers != 0 {
		t.Errorf("total_triggers = %d, want 0 (auto-trigger disabled)", snap.TotalTriggers)
	}
	// The observation is still recorded.
	if snap.LastPersonCount != 3 {
		t.Errorf("last_person_count = %d, want 3", snap.LastPersonCount)
	}
}

func TestHandlePersonCount_RejectionDuringCooldownIsSilent(t *testing.T) {
	intake, te := newTestIntake(t)

	if err := intake.HandlePersonCount("frigate/entrance/person", []byte("1")); err != nil {
		t.Fatalf("first HandlePersonCount() error = %v", err)
	}
	waitForSettled(t, te.store)

	// Cooldown rejection is routine, not a handler error.
	if err := intake.HandlePersonCount("frigate/entrance/person", []byte("1")); err != nil {
		t.Errorf("HandlePersonCount() during cooldown error = %v, want nil", err)
	}
	if got := te.store.Read().TotalTriggers; got != 1 {
		t.Errorf("total_triggers = %d, want 1", got)
	}
}

func TestHandlePortalState_UpdatesWithoutTriggering(t *testing.T) {
	intake, te := newTestIntake(t)

	// State 2 (red) on the bus mirrors the state but never triggers;
	// the portal's distance sensor is not a trusted trigger source.
	if err := intake.HandlePortalState("portal/state", []byte("2")); err != nil {
		t.Fatalf("HandlePortalState() error = %v", err)
	}

	snap := te.store.Read()
	if snap.PortalState != status.PortalBlinkRed {
		t.Errorf("portal_state = %d, want %d", snap.PortalState, status.PortalBlinkRed)
	}
	if snap.PortalLastUpdate == nil {
		t.Error("portal_last_update not stamped")
	}
	if snap.TotalTriggers != 0 {
		t.Errorf("total_triggers = %d, want 0 (portal state never triggers)", snap.TotalTriggers)
	}
}

func TestHandlePortalState_Malformed(t *testing.T) {
	intake, te := newTestIntake(t)

	if err := intake.HandlePortalState("portal/state", []byte("??")); err == nil {
		t.Error("HandlePortalState() = nil on malformed payload, want parse error")
	}

	snap := te.store.Read()
	if snap.PortalState != status.PortalRotating {
		t.Errorf("portal_state = %d, want unchanged default", snap.PortalState)
	}
	if snap.PortalLastUpdate != nil {
		t.Error("portal_last_update stamped for malformed payload")
	}
}

func TestHandlePersonCount_TrimsWhitespace(t *testing.T) {
	intake, te := newTestIntake(t)

	if err := intake.HandlePersonCount("frigate/entrance/person", []byte(" 1\n")); err != nil {
		t.Fatalf("HandlePersonCount() error = %v", err)
	}
	waitForSettled(t, te.store)

	if got := te.store.Read().TotalTriggers; got != 1 {
		t.Errorf("total_triggers = %d, want 1 (payload with whitespace)", got)
	}
}
