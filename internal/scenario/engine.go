package scenario

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/haunt-core/internal/infrastructure/logging"
	"github.com/nerrad567/haunt-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/haunt-core/internal/status"
)

// eventQoS is the QoS level for scenario lifecycle events on the bus.
const eventQoS byte = 1

// PortalController is the portal surface the engine drives.
type PortalController interface {
	TriggerRed(ctx context.Context) error
	Reset(ctx context.Context) error
}

// LightingController is the lighting surface the engine drives.
type LightingController interface {
	Enabled() bool
	ActivateScene(ctx context.Context, entityID string) error
	SetBrightness(ctx context.Context, entityID string, brightness int) error
	TurnOff(ctx context.Context, entityID string) error
}

// Publisher publishes scenario lifecycle events to the bus.
// *mqtt.Client satisfies this.
type Publisher interface {
	PublishString(topic string, payload string, qos byte, retained bool) error
}

// Telemetry records scenario metrics. Implementations must not block.
type Telemetry interface {
	RecordTrigger(source string)
	RecordSequence(duration time.Duration, aborted bool)
}

// Config contains the effect sequence settings.
type Config struct {
	// SceneLightsOn restores normal lighting (sequence step 4).
	SceneLightsOn string

	// SceneLightsOff blacks the house out (sequence step 2).
	SceneLightsOff string

	// FlickerEntity is the light the flicker effect runs on.
	FlickerEntity string

	// FlickerRounds is the number of flicker cycles (step 3).
	FlickerRounds int
}

// Deps contains the engine's dependencies.
type Deps struct {
	Store    *status.Store
	Portal   PortalController
	Lighting LightingController

	// Publisher is optional; nil disables bus events.
	Publisher Publisher

	// Telemetry is optional; nil disables metrics.
	Telemetry Telemetry

	Logger *logging.Logger
}

// Engine owns the scenario lifecycle: trigger admission, the effect
// sequence, operator abort and cooldown reset.
//
// At most one sequence runs at a time; admission is serialized through
// the status store so concurrent triggers collapse to one run.
//
// Thread Safety: all methods are safe for concurrent use.
type Engine struct {
	cfg       Config
	store     *status.Store
	portal    PortalController
	lighting  LightingController
	publisher Publisher
	telemetry Telemetry
	logger    *logging.Logger

	mu        sync.Mutex
	cancelRun context.CancelFunc
	runDone   chan struct{}

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates a scenario engine. Publisher and Telemetry may be
// nil in Deps; the engine then skips bus events and metrics.
func NewEngine(cfg Config, deps Deps) *Engine {
	if cfg.FlickerRounds < 1 {
		cfg.FlickerRounds = 3
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		cfg:       cfg,
		store:     deps.Store,
		portal:    deps.Portal,
		lighting:  deps.Lighting,
		publisher: deps.Publisher,
		telemetry: deps.Telemetry,
		logger:    logger,
		sleep:     sleepCtx,
	}
}

// Trigger attempts to admit a trigger from the given source and, on
// admission, starts the effect sequence in a background goroutine.
//
// Returns:
//   - nil: trigger admitted, sequence started
//   - ErrAlreadyRunning: a sequence is in flight
//   - ErrCooldownActive: inside the cooldown window
func (e *Engine) Trigger(source string) error {
	var reason error
	admitted := e.store.TryUpdate(func(s *status.Status, now time.Time) bool {
		switch s.State(now) {
		case status.StateRunning:
			reason = ErrAlreadyRunning
			return false
		case status.StateCooldown:
			reason = ErrCooldownActive
			return false
		}
		s.ScenarioRunning = true
		triggered := now
		s.LastTriggerTime = &triggered
		s.TotalTriggers++
		return true
	})
	if !admitted {
		e.logger.Debug("trigger rejected", "source", source, "reason", reason)
		return reason
	}

	runID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.mu.Lock()
	e.cancelRun = cancel
	e.runDone = done
	e.mu.Unlock()

	e.logger.Info("scenario triggered", "run_id", runID, "source", source)
	e.publishEvent("triggered", map[string]any{"run_id": runID, "source": source})
	if e.telemetry != nil {
		e.telemetry.RecordTrigger(source)
	}

	go e.run(ctx, runID, source, done)
	return nil
}

// Abort cooperatively cancels an in-flight sequence and waits for it
// to unwind. The cooldown window restarts from the abort moment, so an
// abort never opens the door to an immediate re-trigger.
//
// Returns true if a sequence was aborted, false if none was running.
func (e *Engine) Abort() bool {
	e.mu.Lock()
	cancel, done := e.cancelRun, e.runDone
	e.mu.Unlock()

	if cancel == nil {
		return false
	}

	e.logger.Info("scenario abort requested")
	cancel()
	<-done
	return true
}

// ResetCooldown clears the cooldown window without touching a running
// sequence. The next trigger is immediately admissible once no
// sequence is in flight.
func (e *Engine) ResetCooldown() {
	e.store.Update(func(s *status.Status, _ time.Time) {
		s.LastTriggerTime = nil
	})
	e.logger.Info("cooldown reset")
}

// ToggleAutoTrigger flips the auto-trigger gate and returns the new state.
func (e *Engine) ToggleAutoTrigger() bool {
	var enabled bool
	e.store.Update(func(s *status.Status, _ time.Time) {
		s.AutoTriggerEnabled = !s.AutoTriggerEnabled
		enabled = s.AutoTriggerEnabled
	})
	e.logger.Info("auto-trigger toggled", "enabled", enabled)
	return enabled
}

// Flicker runs the flicker effect outside the scenario lifecycle, for
// the standalone dashboard control. It does not touch admission state.
func (e *Engine) Flicker(ctx context.Context) error {
	return e.runFlicker(ctx, e.cfg.FlickerRounds)
}

// run executes the effect sequence and settles the lifecycle state
// when it finishes, normally or by abort.
func (e *Engine) run(ctx context.Context, runID, source string, done chan struct{}) {
	start := time.Now()
	aborted := e.runSequence(ctx)
	duration := time.Since(start)

	e.store.Update(func(s *status.Status, now time.Time) {
		s.ScenarioRunning = false
		if aborted {
			stamped := now
			s.LastTriggerTime = &stamped
		}
	})

	e.mu.Lock()
	if e.runDone == done {
		e.cancelRun = nil
		e.runDone = nil
	}
	e.mu.Unlock()

	event := "completed"
	if aborted {
		event = "aborted"
	}
	e.logger.Info("scenario "+event, "run_id", runID, "source", source, "duration_ms", duration.Milliseconds())
	e.publishEvent(event, map[string]any{
		"run_id":      runID,
		"source":      source,
		"duration_ms": duration.Milliseconds(),
	})
	if e.telemetry != nil {
		e.telemetry.RecordSequence(duration, aborted)
	}

	close(done)
}

// runSequence drives the five effect steps. Device failures are logged
// and skipped; only cancellation stops the sequence early.
func (e *Engine) runSequence(ctx context.Context) (aborted bool) {
	// Step 1: portal to red.
	if err := e.portal.TriggerRed(ctx); err != nil {
		e.logger.Warn("portal red failed", "error", err)
	}
	if ctx.Err() != nil {
		return true
	}

	if e.lighting.Enabled() {
		// Step 2: black the house out.
		if err := e.lighting.ActivateScene(ctx, e.cfg.SceneLightsOff); err != nil {
			e.logger.Warn("lights-off scene failed", "scene", e.cfg.SceneLightsOff, "error", err)
		}
		if ctx.Err() != nil {
			return true
		}

		// Step 3: flicker.
		if err := e.runFlicker(ctx, e.cfg.FlickerRounds); err != nil {
			return true
		}

		// Step 4: restore normal lighting.
		if err := e.lighting.ActivateScene(ctx, e.cfg.SceneLightsOn); err != nil {
			e.logger.Warn("lights-on scene failed", "scene", e.cfg.SceneLightsOn, "error", err)
		}
	} else {
		// Degraded mode: hold the sequence's timing so the portal side
		// of the effect keeps its shape.
		e.logger.Warn("lighting unavailable, running portal-only sequence")
		wait := cycleDuration() * time.Duration(e.cfg.FlickerRounds)
		if err := e.sleep(ctx, wait); err != nil {
			return true
		}
	}
	if ctx.Err() != nil {
		return true
	}

	// Step 5: portal back to rotating.
	if err := e.portal.Reset(ctx); err != nil {
		e.logger.Warn("portal reset failed", "error", err)
	}
	return false
}

// publishEvent emits a scenario lifecycle event on the bus, best effort.
func (e *Engine) publishEvent(event string, fields map[string]any) {
	if e.publisher == nil {
		return
	}
	fields["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(fields)
	if err != nil {
		e.logger.Warn("encoding scenario event failed", "event", event, "error", err)
		return
	}
	topic := mqtt.Topics{}.ScenarioEvent(event)
	if err := e.publisher.PublishString(topic, string(payload), eventQoS, false); err != nil {
		e.logger.Warn("publishing scenario event failed", "event", event, "error", err)
	}
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
