package scenario

import (
	"context"
	"time"
)

// flickerStep is one brightness change and the hold that follows it.
// Brightness 0 means off.
type flickerStep struct {
	brightness int
	hold       time.Duration
}

// flickerCycle is one round of the entrance-light flicker. The uneven
// brightness levels and holds are what make it read as a faulty lamp
// rather than a strobe.
var flickerCycle = []flickerStep{
	{10, 300 * time.Millisecond},
	{0, 3 * time.Second},
	{200, 300 * time.Millisecond},
	{0, 2500 * time.Millisecond},

	{150, 300 * time.Millisecond},
	{50, 300 * time.Millisecond},
	{0, 3500 * time.Millisecond},

	{70, 300 * time.Millisecond},
	{200, 400 * time.Millisecond},
	{70, 300 * time.Millisecond},
	{0, 1500 * time.Millisecond},

	{200, 400 * time.Millisecond},
	{0, 3 * time.Second},

	{70, 300 * time.Millisecond},
	{0, 3 * time.Second},

	{250, 200 * time.Millisecond},
	{0, time.Second},

	{70, time.Second},
}

// cycleDuration is the wall-clock length of one flicker round.
func cycleDuration() time.Duration {
	var total time.Duration
	for _, step := range flickerCycle {
		total += step.hold
	}
	return total
}

// runFlicker drives the flicker effect on the configured entrance
// light. Cancellation is checked during every hold, so an abort takes
// effect within one sub-cycle. Device failures are ignored; the timing
// runs regardless so the sequence keeps its shape.
func (e *Engine) runFlicker(ctx context.Context, rounds int) error {
	for round := 1; round <= rounds; round++ {
		e.logger.Debug("flicker round starting", "round", round, "rounds", rounds)
		for _, step := range flickerCycle {
			var err error
			if step.brightness == 0 {
				err = e.lighting.TurnOff(ctx, e.cfg.FlickerEntity)
			} else {
				err = e.lighting.SetBrightness(ctx, e.cfg.FlickerEntity, step.brightness)
			}
			if err != nil {
				e.logger.Warn("flicker light command failed",
					"entity", e.cfg.FlickerEntity,
					"brightness", step.brightness,
					"error", err)
			}

			if err := e.sleep(ctx, step.hold); err != nil {
				return err
			}
		}
	}
	return nil
}
