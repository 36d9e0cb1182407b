package api

import (
	"context"
	"net/http"
)

// handleLightsOn activates the normal lighting scene.
func (s *Server) handleLightsOn(w http.ResponseWriter, r *http.Request) {
	if !s.lights.Enabled() {
		writeDeviceUnavailable(w, "lighting controller not available")
		return
	}
	if err := s.lights.ActivateScene(r.Context(), s.lightCfg.SceneLightsOn); err != nil {
		s.logger.Warn("lights-on scene failed", "error", err)
		writeDeviceUnavailable(w, "failed to activate lights-on scene")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "lights turned on",
	})
}

// handleLightsOff activates the lights-off scene.
func (s *Server) handleLightsOff(w http.ResponseWriter, r *http.Request) {
	if !s.lights.Enabled() {
		writeDeviceUnavailable(w, "lighting controller not available")
		return
	}
	if err := s.lights.ActivateScene(r.Context(), s.lightCfg.SceneLightsOff); err != nil {
		s.logger.Warn("lights-off scene failed", "error", err)
		writeDeviceUnavailable(w, "failed to activate lights-off scene")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "lights turned off",
	})
}

// handleFlicker starts the standalone flicker effect in the background.
// The effect spans the better part of a minute, so the request returns
// as soon as it is started.
func (s *Server) handleFlicker(w http.ResponseWriter, _ *http.Request) {
	if !s.lights.Enabled() {
		writeDeviceUnavailable(w, "lighting controller not available")
		return
	}

	go func() {
		if err := s.engine.Flicker(context.Background()); err != nil {
			s.logger.Warn("standalone flicker failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "ok",
		"message": "flicker effect started",
	})
}
