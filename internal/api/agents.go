package api

import (
	"net/http"
	"time"

	"github.com/hollis/gaffer/internal/model"
	"github.com/hollis/gaffer/internal/store"
)

type createAgentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type updateAgentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// handleCreateAgent registers a new agent.
func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	now := time.Now().UTC()
	agent := &model.Agent{
		Name:      *req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		agent.Description = *req.Description
	}

	if err := s.store.CreateAgent(r.Context(), agent); err != nil {
		s.writeDomainError(w, err, "create agent")
		return
	}

	s.writeJSON(w, http.StatusCreated, agent)
}

// handleListAgents returns all live agents.
func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.store.ListAgents(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "list agents")
		return
	}
	if agents == nil {
		agents = []*model.Agent{}
	}
	s.writeJSON(w, http.StatusOK, agents)
}

// handleGetAgent returns a single agent by id.
func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	agent, err := s.store.GetAgent(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, "get agent")
		return
	}
	s.writeJSON(w, http.StatusOK, agent)
}

// handleUpdateAgent applies a partial update to an agent. Omitted fields are
// left unchanged.
func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	var req updateAgentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	agent, err := s.store.UpdateAgent(r.Context(), id, store.AgentUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.writeDomainError(w, err, "update agent")
		return
	}
	s.writeJSON(w, http.StatusOK, agent)
}

// handleDeleteAgent soft-deletes an agent. Existing task assignments and
// execution history keep referencing it.
func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	if err := s.store.SoftDeleteAgent(r.Context(), id); err != nil {
		s.writeDomainError(w, err, "delete agent")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
