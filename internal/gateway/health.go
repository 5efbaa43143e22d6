package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/botwire/botwire/internal/bot"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"` // always "ok" while the process is up
}

// handleHealth returns an http.HandlerFunc for GET /health.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
	}
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds float64           `json:"uptime_seconds"`
	Poller        bot.StatsSnapshot `json:"poller"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			UptimeSeconds: time.Since(s.startedAt).Truncate(time.Second).Seconds(),
		}
		if s.stats != nil {
			resp.Poller = s.stats.Snapshot()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
