package scenario

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/haunt-core/internal/infrastructure/logging"
	"github.com/nerrad567/haunt-core/internal/status"
)

// Intake turns inbound bus messages into status updates and triggers.
//
// Every message is recorded on the status record before any gating, so
// the dashboard's last-message diagnostics stay truthful even when a
// payload is malformed or a trigger is rejected.
type Intake struct {
	engine *Engine
	store  *status.Store
	logger *logging.Logger
}

// NewIntake creates the bus intake.
func NewIntake(engine *Engine, store *status.Store, logger *logging.Logger) *Intake {
	if logger == nil {
		logger = logging.Default()
	}
	return &Intake{engine: engine, store: store, logger: logger}
}

// HandlePersonCount processes a person-count message from the camera
// pipeline. A count of one or more attempts an auto trigger, gated by
// the auto-trigger flag; admission rejections are routine and logged
// at debug only.
func (i *Intake) HandlePersonCount(topic string, payload []byte) error {
	text := strings.TrimSpace(string(payload))
	count, parseErr := strconv.Atoi(text)

	i.store.Update(func(s *status.Status, now time.Time) {
		s.LastBusMessage = &status.BusMessage{Topic: topic, Payload: text, Timestamp: now}
		if parseErr == nil {
			s.LastPersonCount = count
		}
	})

	if parseErr != nil {
		return fmt.Errorf("parsing person count %q: %w", text, parseErr)
	}
	if count < 1 {
		return nil
	}

	if !i.store.Read().AutoTriggerEnabled {
		i.logger.Debug("person detected but auto-trigger disabled", "count", count)
		return nil
	}

	i.logger.Info("person detected", "count", count)
	if err := i.engine.Trigger("camera"); err != nil {
		if errors.Is(err, ErrAlreadyRunning) || errors.Is(err, ErrCooldownActive) {
			i.logger.Debug("auto trigger rejected", "reason", err)
			return nil
		}
		return err
	}
	return nil
}

// HandlePortalState processes a portal state report. The report only
// updates the mirrored portal state; it never triggers the scenario,
// the portal's own distance sensor is not a trusted trigger source.
func (i *Intake) HandlePortalState(topic string, payload []byte) error {
	text := strings.TrimSpace(string(payload))
	state, parseErr := strconv.Atoi(text)

	i.store.Update(func(s *status.Status, now time.Time) {
		s.LastBusMessage = &status.BusMessage{Topic: topic, Payload: text, Timestamp: now}
		if parseErr == nil {
			s.PortalState = state
			updated := now
			s.PortalLastUpdate = &updated
		}
	})

	if parseErr != nil {
		return fmt.Errorf("parsing portal state %q: %w", text, parseErr)
	}

	i.logger.Debug("portal state reported", "state", state)
	return nil
}
