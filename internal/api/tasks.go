package api

import (
	"net/http"
	"time"

	"github.com/hollis/gaffer/internal/model"
	"github.com/hollis/gaffer/internal/store"
)

type createTaskRequest struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	SupportedAgentIDs []int64 `json:"supported_agent_ids"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	// A nil slice leaves the authorized set unchanged; an explicit empty
	// list clears it.
	SupportedAgentIDs []int64 `json:"supported_agent_ids"`
}

// handleCreateTask creates a task together with its authorized-agent set.
// Every referenced agent must exist, and at least one is required.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Title == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}
	if req.Description == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "description is required")
		return
	}
	if len(req.SupportedAgentIDs) == 0 {
		s.writeError(w, http.StatusUnprocessableEntity, "supported_agent_ids must not be empty")
		return
	}

	now := time.Now().UTC()
	task := &model.Task{
		Title:       *req.Title,
		Description: *req.Description,
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTask(r.Context(), task, req.SupportedAgentIDs); err != nil {
		s.writeDomainError(w, err, "create task")
		return
	}

	s.writeJSON(w, http.StatusCreated, task)
}

// handleListTasks returns all live tasks with their agent summaries.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "list tasks")
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	s.writeJSON(w, http.StatusOK, tasks)
}

// handleGetTask returns a single task by id.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	task, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, "get task")
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

// handleUpdateTask applies a partial update to a task. A supplied
// supported_agent_ids list fully replaces the authorized set.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Status != nil && !model.ValidTaskStatus(*req.Status) {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid status")
		return
	}

	task, err := s.store.UpdateTask(r.Context(), id, store.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AgentIDs:    req.SupportedAgentIDs,
	})
	if err != nil {
		s.writeDomainError(w, err, "update task")
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

// handleDeleteTask soft-deletes a task. Its assignments and executions are
// kept as history.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	if err := s.store.SoftDeleteTask(r.Context(), id); err != nil {
		s.writeDomainError(w, err, "delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
