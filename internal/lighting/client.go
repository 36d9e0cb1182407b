package lighting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// healthCheckTimeout is the short timeout used for reachability probes,
// independent of the configured per-request timeout.
const healthCheckTimeout = 3 * time.Second

// maxResponseSize limits response bodies read from the controller.
const maxResponseSize = 64 * 1024

// Config contains lighting controller client settings.
type Config struct {
	// URL is the base URL of the controller REST API (e.g.,
	// "http://10.1.5.10:8123"). Empty means degraded mode.
	URL string

	// Token is the bearer token sent with every request.
	Token string

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// Client talks to the lighting controller over its REST service API.
//
// Service calls are POSTs to /api/services/{domain}/{service} with a
// JSON body naming the target entity. Failures yield sentinel-wrapped
// errors, never panics; callers decide whether a failure matters (the
// scenario sequence treats them as non-fatal).
//
// Thread Safety: all methods are safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a lighting client for the controller at cfg.URL.
// An empty URL yields a client in degraded mode: Enabled() reports
// false and every service call returns ErrDisabled.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether a controller URL was configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// HealthCheck probes the controller API root with a short timeout.
// The controller answers {"message": "API running."} when healthy;
// anything else, including a reachability failure, reports false.
func (c *Client) HealthCheck(ctx context.Context) bool {
	if !c.Enabled() {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/", nil)
	if err != nil {
		return false
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var health struct {
		Message string `json:"message"`
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return false
	}
	return health.Message == "API running."
}

// ActivateScene activates a scene entity (e.g., "scene.halloween_pa").
func (c *Client) ActivateScene(ctx context.Context, entityID string) error {
	return c.callService(ctx, "scene", "turn_on", map[string]any{
		"entity_id": entityID,
	})
}

// SetBrightness turns a light on at the given brightness (0-255).
func (c *Client) SetBrightness(ctx context.Context, entityID string, brightness int) error {
	return c.callService(ctx, "light", "turn_on", map[string]any{
		"entity_id":  entityID,
		"brightness": brightness,
	})
}

// TurnOff turns a light entity off.
func (c *Client) TurnOff(ctx context.Context, entityID string) error {
	return c.callService(ctx, "light", "turn_off", map[string]any{
		"entity_id": entityID,
	})
}

// callService POSTs a service call to /api/services/{domain}/{service}.
func (c *Client) callService(ctx context.Context, domain, service string, payload map[string]any) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("lighting: encoding %s.%s payload: %w", domain, service, err)
	}

	url := fmt.Sprintf("%s/api/services/%s/%s", c.baseURL, domain, service)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("lighting: building %s.%s request: %w", domain, service, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s.%s: %w", ErrUnreachable, domain, service, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	// The controller returns 200 with the list of changed states.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s.%s returned HTTP %d", ErrBadResponse, domain, service, resp.StatusCode)
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize)) //nolint:errcheck // Drain only
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}
