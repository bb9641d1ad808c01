package api

import (
	"net/http"

	"github.com/hollis/gaffer/internal/model"
)

type createExecutionRequest struct {
	TaskID  *int64 `json:"task_id"`
	AgentID *int64 `json:"agent_id"`
}

// handleCreateExecution launches a task on an agent. The response carries the
// freshly created running execution; completion happens in the background.
func (s *Server) handleCreateExecution(w http.ResponseWriter, r *http.Request) {
	var req createExecutionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.TaskID == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "task_id is required")
		return
	}
	if req.AgentID == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "agent_id is required")
		return
	}

	exec, err := s.engine.Launch(r.Context(), *req.TaskID, *req.AgentID)
	if err != nil {
		s.writeDomainError(w, err, "create execution")
		return
	}

	s.writeJSON(w, http.StatusCreated, exec)
}

// handleListExecutions returns all executions, oldest first.
func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	execs, err := s.store.ListExecutions(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "list executions")
		return
	}
	if execs == nil {
		execs = []*model.Execution{}
	}
	s.writeJSON(w, http.StatusOK, execs)
}

// handleListRunningExecutions returns executions still in flight.
func (s *Server) handleListRunningExecutions(w http.ResponseWriter, r *http.Request) {
	execs, err := s.store.ListExecutionsByStatus(r.Context(), model.StatusRunning)
	if err != nil {
		s.writeDomainError(w, err, "list running executions")
		return
	}
	if execs == nil {
		execs = []*model.Execution{}
	}
	s.writeJSON(w, http.StatusOK, execs)
}

// handleGetExecution returns a single execution by id.
func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	exec, err := s.store.GetExecution(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, "get execution")
		return
	}
	s.writeJSON(w, http.StatusOK, exec)
}
