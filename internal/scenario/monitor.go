package scenario

import (
	"context"
	"time"

	"github.com/nerrad567/haunt-core/internal/infrastructure/logging"
	"github.com/nerrad567/haunt-core/internal/status"
)

// PortalProbe is the reachability surface of the portal client.
type PortalProbe interface {
	CheckOnline(ctx context.Context) bool
}

// LightingProbe is the reachability surface of the lighting client.
type LightingProbe interface {
	HealthCheck(ctx context.Context) bool
}

// BusProbe is the connectivity surface of the bus client.
type BusProbe interface {
	IsConnected() bool
}

// LivenessRecorder records device liveness metrics. Implementations
// must not block.
type LivenessRecorder interface {
	RecordLiveness(portalOnline, lightingAvailable, busConnected bool)
}

// Prober periodically checks device reachability and mirrors the
// results onto the status record. Flags only change on a completed
// probe; a hung device flips its flag after the probe timeout, never
// blocks the sequence.
type Prober struct {
	store    *status.Store
	portal   PortalProbe
	lighting LightingProbe
	bus      BusProbe
	recorder LivenessRecorder
	interval time.Duration
	logger   *logging.Logger
}

// NewProber creates a liveness prober. Recorder may be nil.
func NewProber(store *status.Store, portal PortalProbe, lighting LightingProbe, bus BusProbe, recorder LivenessRecorder, interval time.Duration, logger *logging.Logger) *Prober {
	if logger == nil {
		logger = logging.Default()
	}
	return &Prober{
		store:    store,
		portal:   portal,
		lighting: lighting,
		bus:      bus,
		recorder: recorder,
		interval: interval,
		logger:   logger,
	}
}

// Run probes once immediately, then on every interval tick until ctx
// is cancelled. A zero or negative interval probes once and returns.
func (p *Prober) Run(ctx context.Context) {
	p.ProbeOnce(ctx)
	if p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProbeOnce(ctx)
		}
	}
}

// ProbeOnce checks all devices and updates the status record if any
// flag changed. Unchanged probes do not wake dashboard observers.
func (p *Prober) ProbeOnce(ctx context.Context) {
	portalOnline := p.portal.CheckOnline(ctx)
	lightingAvailable := p.lighting.HealthCheck(ctx)
	busConnected := p.bus.IsConnected()

	snap := p.store.Read()
	if snap.PortalOnline != portalOnline ||
		snap.LightingAvailable != lightingAvailable ||
		snap.BusConnected != busConnected {
		p.logger.Info("device liveness changed",
			"portal_online", portalOnline,
			"lighting_available", lightingAvailable,
			"bus_connected", busConnected)
		p.store.Update(func(s *status.Status, _ time.Time) {
			s.PortalOnline = portalOnline
			s.LightingAvailable = lightingAvailable
			s.BusConnected = busConnected
		})
	}

	if p.recorder != nil {
		p.recorder.RecordLiveness(portalOnline, lightingAvailable, busConnected)
	}
}
