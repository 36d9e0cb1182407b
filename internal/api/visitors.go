package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nerrad567/haunt-core/internal/status"
)

// maxVisitorIncrement bounds a single add so a typo can't wreck the tally.
const maxVisitorIncrement = 100

// addVisitorsRequest is the body of POST /visitors/add.
type addVisitorsRequest struct {
	Count int `json:"count"`
}

// handleGetVisitors returns the durable visitor count.
func (s *Server) handleGetVisitors(w http.ResponseWriter, r *http.Request) {
	count, err := s.visitors.Get(r.Context())
	if err != nil {
		s.logger.Error("reading visitor count failed", "error", err)
		writeInternalError(w, "failed to read visitor count")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"visitor_count": count,
	})
}

// handleAddVisitors adds visitors to the durable tally and mirrors the
// new total onto the status record for dashboard broadcast.
func (s *Server) handleAddVisitors(w http.ResponseWriter, r *http.Request) {
	req := addVisitorsRequest{Count: 1}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}
	if req.Count < 1 || req.Count > maxVisitorIncrement {
		writeBadRequest(w, "count must be an integer between 1 and 100")
		return
	}

	newCount, err := s.visitors.Add(r.Context(), req.Count)
	if err != nil {
		s.logger.Error("adding visitors failed", "count", req.Count, "error", err)
		writeInternalError(w, "failed to update visitor count")
		return
	}

	s.mirrorVisitorCount(newCount)
	s.logger.Info("visitors added", "added", req.Count, "total", newCount)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"visitor_count": newCount,
		"added":         req.Count,
	})
}

// handleResetVisitors zeroes the durable visitor tally.
func (s *Server) handleResetVisitors(w http.ResponseWriter, r *http.Request) {
	newCount, err := s.visitors.Reset(r.Context())
	if err != nil {
		s.logger.Error("resetting visitor count failed", "error", err)
		writeInternalError(w, "failed to reset visitor count")
		return
	}

	s.mirrorVisitorCount(newCount)
	s.logger.Info("visitor count reset")

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"visitor_count": newCount,
		"message":       "visitor count reset",
	})
}

// mirrorVisitorCount pushes the durable count onto the status record
// (which broadcasts to dashboards) and into telemetry.
func (s *Server) mirrorVisitorCount(count int) {
	s.store.Update(func(st *status.Status, _ time.Time) {
		st.VisitorCount = count
	})
	if s.recorder != nil {
		s.recorder.RecordVisitorCount(count)
	}
}
