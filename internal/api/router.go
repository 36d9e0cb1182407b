package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", s.handleHealth)

		// System status and metrics
		r.Get("/status", s.handleStatus)
		r.Get("/metrics", s.handleMetrics)

		// Scenario control
		r.Route("/scenario", func(r chi.Router) {
			r.Post("/trigger", s.handleTriggerScenario)
			r.Post("/reset", s.handleResetScenario)
			r.Post("/reset-cooldown", s.handleResetCooldown)
			r.Post("/auto-trigger/toggle", s.handleToggleAutoTrigger)
		})

		// Portal passthrough
		r.Route("/portal", func(r chi.Router) {
			r.Get("/state", s.handlePortalState)
			r.Post("/red", s.handlePortalRed)
			r.Post("/green", s.handlePortalGreen)
			r.Post("/reset", s.handlePortalReset)
		})

		// Lighting passthrough
		r.Route("/lighting", func(r chi.Router) {
			r.Post("/on", s.handleLightsOn)
			r.Post("/off", s.handleLightsOff)
			r.Post("/flicker", s.handleFlicker)
		})

		// Visitor tracking
		r.Route("/visitors", func(r chi.Router) {
			r.Get("/", s.handleGetVisitors)
			r.Post("/add", s.handleAddVisitors)
			r.Post("/reset", s.handleResetVisitors)
		})

		// WebSocket status feed
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
