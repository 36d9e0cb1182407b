package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Device states as reported by the portal firmware.
const (
	StateRotating   = 1 // green rotating animation (normal/idle)
	StateBlinkRed   = 2 // red blink then solid red (triggered/alert)
	StateBlinkGreen = 3 // green blink (acknowledgment)
)

// onlineCheckTimeout is the short timeout used for reachability probes,
// independent of the configured per-request timeout.
const onlineCheckTimeout = 3 * time.Second

// maxResponseSize limits response bodies read from the device (it returns
// tiny JSON payloads; anything larger indicates a misbehaving endpoint).
const maxResponseSize = 4096

// StateInfo is the device's state report.
type StateInfo struct {
	State int `json:"state"`
}

// Client talks to the LED portal device over its HTTP command interface.
//
// Every command is a GET to a fixed path with a short timeout. Failures
// yield ErrUnreachable-wrapped errors, never panics; callers decide
// whether a failure matters (the scenario sequence treats them as
// non-fatal, the liveness prober records them).
//
// Thread Safety: all methods are safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config contains portal client settings.
type Config struct {
	// Host is the IP address or hostname of the portal device.
	Host string

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// New creates a portal client for the device at cfg.Host.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: fmt.Sprintf("http://%s", cfg.Host),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetState queries the device's current reported state.
//
// Returns:
//   - StateInfo: the reported state (1, 2, or 3)
//   - error: ErrUnreachable-wrapped on connection failure or timeout
func (c *Client) GetState(ctx context.Context) (StateInfo, error) {
	body, err := c.get(ctx, "/state")
	if err != nil {
		return StateInfo{}, err
	}

	var info StateInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return StateInfo{}, fmt.Errorf("%w: parsing state response: %w", ErrBadResponse, err)
	}
	return info, nil
}

// TriggerRed switches the device to the red blink state (state 2).
// The red state persists until Reset is called.
func (c *Client) TriggerRed(ctx context.Context) error {
	_, err := c.get(ctx, "/red")
	return err
}

// TriggerGreen switches the device to the green blink state (state 3).
// The device returns to rotating on its own.
func (c *Client) TriggerGreen(ctx context.Context) error {
	_, err := c.get(ctx, "/green")
	return err
}

// Reset returns the device to the rotating state (state 1).
func (c *Client) Reset(ctx context.Context) error {
	_, err := c.get(ctx, "/reset")
	return err
}

// CheckOnline probes the device with a short timeout, independent of the
// configured per-request timeout. Used by the liveness prober and the
// dashboard ping.
func (c *Client) CheckOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, onlineCheckTimeout)
	defer cancel()

	_, err := c.get(ctx, "/state")
	return err == nil
}

// get performs a GET against the device and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("portal: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreachable, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned HTTP %d", ErrBadResponse, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %w", ErrUnreachable, path, err)
	}
	return body, nil
}
