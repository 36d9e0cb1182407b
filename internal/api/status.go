package api

import (
	"net/http"
	"runtime"
	"time"
)

// handleStatus returns the full system status snapshot.
//
// When a prober is wired, liveness flags are refreshed first so the
// dashboard's initial render reflects current reachability rather than
// the last periodic probe.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.prober != nil {
		s.prober.ProbeOnce(r.Context())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"data":   s.store.Read(),
	})
}

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string          `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       RuntimeMetrics  `json:"runtime"`
	WebSocket     WSMetrics       `json:"websocket"`
	Bus           BusMetrics      `json:"bus"`
	Scenario      ScenarioMetrics `json:"scenario"`
	Database      DatabaseMetrics `json:"database"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// BusMetrics contains bus client statistics.
type BusMetrics struct {
	Connected bool `json:"connected"`
}

// ScenarioMetrics contains scenario lifecycle counters.
type ScenarioMetrics struct {
	TotalTriggers   int    `json:"total_triggers"`
	State           string `json:"state"`
	LastPersonCount int    `json:"last_person_count"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns system metrics for monitoring.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := s.store.Read()

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Scenario: ScenarioMetrics{
			TotalTriggers:   snap.TotalTriggers,
			State:           string(snap.State),
			LastPersonCount: snap.LastPersonCount,
		},
	}

	if s.bus != nil {
		metrics.Bus = BusMetrics{Connected: s.bus.IsConnected()}
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
