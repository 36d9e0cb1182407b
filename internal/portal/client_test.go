package portal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// newTestClient points a Client at an httptest server.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Config{Host: "unused", Timeout: 2 * time.Second})
	c.baseURL = srv.URL
	return c, srv
}

func TestGetState(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/state" {
			t.Errorf("path = %q, want /state", r.URL.Path)
		}
		w.Write([]byte(`{"state": 2}`)) //nolint:errcheck // test handler
	}))

	info, err := c.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if info.State != StateBlinkRed {
		t.Errorf("state = %d, want %d", info.State, StateBlinkRed)
	}
}

func TestGetState_BadJSON(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json")) //nolint:errcheck // test handler
	}))

	_, err := c.GetState(context.Background())
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("GetState() error = %v, want ErrBadResponse", err)
	}
}

func TestCommands_HitExpectedPaths(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck // test handler
	}))

	ctx := context.Background()
	if err := c.TriggerRed(ctx); err != nil {
		t.Errorf("TriggerRed() error = %v", err)
	}
	if err := c.TriggerGreen(ctx); err != nil {
		t.Errorf("TriggerGreen() error = %v", err)
	}
	if err := c.Reset(ctx); err != nil {
		t.Errorf("Reset() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := "/red /green /reset"
	if got := strings.Join(paths, " "); got != want {
		t.Errorf("paths = %q, want %q", got, want)
	}
}

func TestUnreachable(t *testing.T) {
	c := New(Config{Host: "unused", Timeout: time.Second})
	c.baseURL = "http://127.0.0.1:1" // Nothing listens here

	if err := c.TriggerRed(context.Background()); !errors.Is(err, ErrUnreachable) {
		t.Errorf("TriggerRed() error = %v, want ErrUnreachable", err)
	}
}

func TestNon200Response(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	if err := c.Reset(context.Background()); !errors.Is(err, ErrBadResponse) {
		t.Errorf("Reset() error = %v, want ErrBadResponse", err)
	}
}

func TestCheckOnline(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"state": 1}`)) //nolint:errcheck // test handler
	}))

	if !c.CheckOnline(context.Background()) {
		t.Error("CheckOnline() = false against healthy server, want true")
	}

	down := New(Config{Host: "unused", Timeout: time.Second})
	down.baseURL = "http://127.0.0.1:1"
	if down.CheckOnline(context.Background()) {
		t.Error("CheckOnline() = true against dead endpoint, want false")
	}
}
