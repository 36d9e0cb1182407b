package api

import (
	"net/http"
)

// handlePortalState queries the portal device directly.
func (s *Server) handlePortalState(w http.ResponseWriter, r *http.Request) {
	info, err := s.portal.GetState(r.Context())
	if err != nil {
		s.logger.Warn("portal state query failed", "error", err)
		writeDeviceUnavailable(w, "failed to get portal state")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"data":   info,
	})
}

// handlePortalRed switches the portal to the red blink state.
func (s *Server) handlePortalRed(w http.ResponseWriter, r *http.Request) {
	if err := s.portal.TriggerRed(r.Context()); err != nil {
		s.logger.Warn("portal red command failed", "error", err)
		writeDeviceUnavailable(w, "failed to trigger red blink")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "red blink triggered",
	})
}

// handlePortalGreen switches the portal to the green blink state.
func (s *Server) handlePortalGreen(w http.ResponseWriter, r *http.Request) {
	if err := s.portal.TriggerGreen(r.Context()); err != nil {
		s.logger.Warn("portal green command failed", "error", err)
		writeDeviceUnavailable(w, "failed to trigger green blink")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "green blink triggered",
	})
}

// handlePortalReset returns the portal to the rotating state.
func (s *Server) handlePortalReset(w http.ResponseWriter, r *http.Request) {
	if err := s.portal.Reset(r.Context()); err != nil {
		s.logger.Warn("portal reset command failed", "error", err)
		writeDeviceUnavailable(w, "failed to reset portal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "portal reset to rotating state",
	})
}
