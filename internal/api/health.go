package api

import (
	"net/http"
	"time"
)

const serviceVersion = "1.0.0"

type rootResponse struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type healthResponse struct {
	Status      string    `json:"status"`
	Environment string    `json:"environment"`
	Timestamp   time.Time `json:"timestamp"`
}

type readinessResponse struct {
	Status string `json:"status"`
}

// handleRoot identifies the service.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, rootResponse{
		Service:     "gaffer",
		Version:     serviceVersion,
		Environment: s.cfg.Environment,
	})
}

// handleHealth reports basic service health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Environment: s.cfg.Environment,
		Timestamp:   time.Now().UTC(),
	})
}

// handleHealthReady reports readiness by pinging the database.
func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("readiness check", "error", err)
		s.writeJSON(w, http.StatusServiceUnavailable, readinessResponse{Status: "not ready"})
		return
	}
	s.writeJSON(w, http.StatusOK, readinessResponse{Status: "ready"})
}

// handleHealthLive reports process liveness.
func (s *Server) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, readinessResponse{Status: "alive"})
}
