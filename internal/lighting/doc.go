// Package lighting provides the client for the Home Assistant style
// lighting controller REST API.
//
// The controller exposes service calls as POST endpoints under
// /api/services; this package wraps the three the scenario engine
// needs (scene activation, brightness, light off) plus the health
// probe. All requests carry a bearer token.
//
// # Degraded Mode
//
// The client can be built without a controller URL. Every service call
// then returns ErrDisabled immediately and HealthCheck reports false.
// The scenario engine runs the full sequence anyway, holding its
// timing with sleeps, so the portal side of the effect still works
// when the lighting controller is down or unconfigured.
package lighting
