package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/haunt-core/internal/scenario"
)

// handleTriggerScenario manually triggers the effect sequence.
// Manual triggers bypass the auto-trigger gate but not admission.
func (s *Server) handleTriggerScenario(w http.ResponseWriter, _ *http.Request) {
	err := s.engine.Trigger("manual")
	switch {
	case errors.Is(err, scenario.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, ErrCodeConflict, "scenario is already running")
	case errors.Is(err, scenario.ErrCooldownActive):
		remaining := s.store.Read().CooldownRemaining
		writeError(w, http.StatusTooManyRequests, ErrCodeCooldown,
			formatCooldownMessage(remaining))
	case err != nil:
		writeInternalError(w, "triggering scenario failed")
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "scenario triggered",
		})
	}
}

// handleResetScenario aborts any running sequence and best-effort
// returns the devices to their idle look. Only the orchestration
// unblock is guaranteed; device restores may fail silently.
func (s *Server) handleResetScenario(w http.ResponseWriter, r *http.Request) {
	wasRunning := s.engine.Abort()

	// Best-effort device restore, matching the manual dashboard reset.
	if err := s.portal.Reset(r.Context()); err != nil {
		s.logger.Warn("portal reset during scenario reset failed", "error", err)
	}
	if s.lights.Enabled() {
		if err := s.lights.ActivateScene(r.Context(), s.lightCfg.SceneLightsOn); err != nil {
			s.logger.Warn("lights-on during scenario reset failed", "error", err)
		}
	}

	message := "scenario reset"
	if wasRunning {
		message = "scenario stopped and reset"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": message,
	})
}

// handleResetCooldown clears the cooldown window. A running sequence
// is unaffected.
func (s *Server) handleResetCooldown(w http.ResponseWriter, _ *http.Request) {
	s.engine.ResetCooldown()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "cooldown timer reset",
	})
}

// handleToggleAutoTrigger flips the auto-trigger gate.
func (s *Server) handleToggleAutoTrigger(w http.ResponseWriter, _ *http.Request) {
	enabled := s.engine.ToggleAutoTrigger()

	message := "auto-trigger disabled"
	if enabled {
		message = "auto-trigger enabled"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "ok",
		"auto_trigger_enabled": enabled,
		"message":              message,
	})
}
