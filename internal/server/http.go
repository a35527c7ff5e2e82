package server

import (
	"encoding/json"
	"net/http"

	"github.com/zeusync/rifts/internal/core/observability/log"
)

type healthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
	Tick   uint64 `json:"tick"`
	Client bool   `json:"client"`
}

// Handler returns the HTTP routes of the bridge.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Client: s.client.Load() != nil}
	if snap := s.source.Snapshot(); snap != nil {
		resp.State = snap.State.String()
		resp.Tick = snap.Tick
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("Failed to write health response", log.Error(err))
	}
}
