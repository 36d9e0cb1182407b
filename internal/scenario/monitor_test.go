package scenario

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/haunt-core/internal/status"
)

type fakePortalProbe struct {
	mu     sync.Mutex
	online bool
}

func (p *fakePortalProbe) CheckOnline(_ context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *fakePortalProbe) set(online bool) {
	p.mu.Lock()
	p.online = online
	p.mu.Unlock()
}

type fakeLightingProbe struct {
	mu      sync.Mutex
	healthy bool
}

func (l *fakeLightingProbe) HealthCheck(_ context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.healthy
}

type fakeBusProbe struct {
	mu        sync.Mutex
	connected bool
}

func (b *fakeBusProbe) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

type fakeRecorder struct {
	mu    sync.Mutex
	count int
}

func (r *fakeRecorder) RecordLiveness(_, _, _ bool) {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
}

func (r *fakeRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func TestProbeOnce_UpdatesFlags(t *testing.T) {
	store := status.New(30 * time.Second)
	portal := &fakePortalProbe{online: true}
	lighting := &fakeLightingProbe{healthy: true}
	bus := &fakeBusProbe{connected: true}

	prober := NewProber(store, portal, lighting, bus, nil, 0, testLogger())
	prober.ProbeOnce(context.Background())

	snap := store.Read()
	if !snap.PortalOnline || !snap.LightingAvailable || !snap.BusConnected {
		t.Errorf("liveness flags = %v/%v/%v, want all true",
			snap.PortalOnline, snap.LightingAvailable, snap.BusConnected)
	}

	portal.set(false)
	prober.ProbeOnce(context.Background())

	snap = store.Read()
	if snap.PortalOnline {
		t.Error("portal_online still true after failed probe")
	}
	if !snap.LightingAvailable || !snap.BusConnected {
		t.Error("unrelated liveness flags flipped with the portal probe")
	}
}

func TestProbeOnce_UnchangedProbeDoesNotNotify(t *testing.T) {
	store := status.New(30 * time.Second)

	var mu sync.Mutex
	notifications := 0
	store.SetOnChange(func(status.Snapshot) {
		mu.Lock()
		notifications++
		mu.Unlock()
	})

	portal := &fakePortalProbe{online: true}
	prober := NewProber(store, portal, &fakeLightingProbe{}, &fakeBusProbe{}, nil, 0, testLogger())

	prober.ProbeOnce(context.Background())
	prober.ProbeOnce(context.Background())
	prober.ProbeOnce(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if notifications != 1 {
		t.Errorf("got %d notifications, want 1 (only the first probe changed anything)", notifications)
	}
}

func TestProbeOnce_RecorderCalledEveryProbe(t *testing.T) {
	store := status.New(30 * time.Second)
	recorder := &fakeRecorder{}
	prober := NewProber(store, &fakePortalProbe{}, &fakeLightingProbe{}, &fakeBusProbe{}, recorder, 0, testLogger())

	prober.ProbeOnce(context.Background())
	prober.ProbeOnce(context.Background())

	if got := recorder.Count(); got != 2 {
		t.Errorf("recorder called %d times, want 2 (metrics record every probe)", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := status.New(30 * time.Second)
	prober := NewProber(store, &fakePortalProbe{}, &fakeLightingProbe{}, &fakeBusProbe{}, nil, time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		prober.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("prober did not stop after cancellation")
	}
}
