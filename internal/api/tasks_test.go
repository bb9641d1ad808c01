package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hollis/gaffer/internal/model"
)

// createTask creates a task through the API and returns the response body.
func createTask(t *testing.T, ts *httptest.Server, token, title string, agentIDs []int64) model.Task {
	t.Helper()

	resp := doJSON(t, ts, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":               title,
		"description":         title + " description",
		"supported_agent_ids": agentIDs,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task status = %d, want 201", resp.StatusCode)
	}

	var task model.Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return task
}

func agentIDs(task model.Task) []int64 {
	ids := make([]int64, len(task.Agents))
	for i, a := range task.Agents {
		ids[i] = a.ID
	}
	return ids
}

func TestCreateTask(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	agent := createAgent(t, ts, token, "worker")
	task := createTask(t, ts, token, "deploy", []int64{agent.ID})

	if task.ID == 0 {
		t.Error("id is zero")
	}
	if task.Title != "deploy" {
		t.Errorf("title = %q, want %q", task.Title, "deploy")
	}
	if task.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", task.Status, model.StatusPending)
	}
	if len(task.Agents) != 1 || task.Agents[0].ID != agent.ID {
		t.Errorf("agents = %+v, want [%d]", task.Agents, agent.ID)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	agent := createAgent(t, ts, token, "worker")

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{
			"missing title",
			map[string]any{"description": "d", "supported_agent_ids": []int64{agent.ID}},
			"title is required",
		},
		{
			"missing description",
			map[string]any{"title": "t", "supported_agent_ids": []int64{agent.ID}},
			"description is required",
		},
		{
			"missing agent ids",
			map[string]any{"title": "t", "description": "d"},
			"supported_agent_ids must not be empty",
		},
		{
			"empty agent ids",
			map[string]any{"title": "t", "description": "d", "supported_agent_ids": []int64{}},
			"supported_agent_ids must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, ts, http.MethodPost, "/api/tasks", token, tt.body)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", resp.StatusCode)
			}
			if msg := errorMessage(t, resp); msg != tt.want {
				t.Errorf("error = %q, want %q", msg, tt.want)
			}
		})
	}
}

func TestCreateTaskUnknownAgent(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	resp := doJSON(t, ts, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":               "t",
		"description":         "d",
		"supported_agent_ids": []int64{999},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if msg := errorMessage(t, resp); msg != "One or more agent IDs do not exist" {
		t.Errorf("error = %q, want %q", msg, "One or more agent IDs do not exist")
	}
}

func TestGetTaskNotFound(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	resp := doJSON(t, ts, http.MethodGet, "/api/tasks/5", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if msg := errorMessage(t, resp); msg != "Task with id 5 not found" {
		t.Errorf("error = %q, want %q", msg, "Task with id 5 not found")
	}
}

func TestListTasksEmbedsAgents(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	a1 := createAgent(t, ts, token, "one")
	a2 := createAgent(t, ts, token, "two")
	createTask(t, ts, token, "first", []int64{a1.ID, a2.ID})
	createTask(t, ts, token, "second", []int64{a2.ID})

	resp := doJSON(t, ts, http.MethodGet, "/api/tasks", token, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var tasks []model.Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	if got := agentIDs(tasks[0]); len(got) != 2 || got[0] != a1.ID || got[1] != a2.ID {
		t.Errorf("first task agents = %v, want [%d %d]", got, a1.ID, a2.ID)
	}
	if got := agentIDs(tasks[1]); len(got) != 1 || got[0] != a2.ID {
		t.Errorf("second task agents = %v, want [%d]", got, a2.ID)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	agent := createAgent(t, ts, token, "worker")
	task := createTask(t, ts, token, "progress", []int64{agent.ID})

	resp := doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), token, map[string]any{
		"status": model.StatusRunning,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var updated model.Task
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if updated.Status != model.StatusRunning {
		t.Errorf("status = %q, want %q", updated.Status, model.StatusRunning)
	}
	if updated.Title != task.Title {
		t.Errorf("title = %q, want unchanged %q", updated.Title, task.Title)
	}
}

func TestUpdateTaskInvalidStatus(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	agent := createAgent(t, ts, token, "worker")
	task := createTask(t, ts, token, "progress", []int64{agent.ID})

	resp := doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), token, map[string]any{
		"status": "bogus",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	if msg := errorMessage(t, resp); msg != "invalid status" {
		t.Errorf("error = %q, want %q", msg, "invalid status")
	}
}

func TestUpdateTaskReplacesAgents(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	a1 := createAgent(t, ts, token, "one")
	a2 := createAgent(t, ts, token, "two")
	task := createTask(t, ts, token, "handoff", []int64{a1.ID})

	resp := doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), token, map[string]any{
		"supported_agent_ids": []int64{a2.ID},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var updated model.Task
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if got := agentIDs(updated); len(got) != 1 || got[0] != a2.ID {
		t.Errorf("agents = %v, want [%d]", got, a2.ID)
	}
}

func TestUpdateTaskOmittedAgentsUnchanged(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	agent := createAgent(t, ts, token, "keeper")
	task := createTask(t, ts, token, "stable", []int64{agent.ID})

	resp := doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), token, map[string]any{
		"title": "retitled",
	})
	defer resp.Body.Close()

	var updated model.Task
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if got := agentIDs(updated); len(got) != 1 || got[0] != agent.ID {
		t.Errorf("agents = %v, want unchanged [%d]", got, agent.ID)
	}
}

func TestUpdateTaskEmptyAgentsClears(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	agent := createAgent(t, ts, token, "removed")
	task := createTask(t, ts, token, "orphaned", []int64{agent.ID})

	resp := doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), token, map[string]any{
		"supported_agent_ids": []int64{},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var updated model.Task
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if len(updated.Agents) != 0 {
		t.Errorf("agents = %+v, want empty", updated.Agents)
	}
}

func TestUpdateTaskUnknownAgent(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	agent := createAgent(t, ts, token, "worker")
	task := createTask(t, ts, token, "risky", []int64{agent.ID})

	resp := doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), token, map[string]any{
		"supported_agent_ids": []int64{999},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if msg := errorMessage(t, resp); msg != "One or more agent IDs do not exist" {
		t.Errorf("error = %q, want %q", msg, "One or more agent IDs do not exist")
	}
}

func TestDeleteTask(t *testing.T) {
	_, ts := newTestServer(t)
	token := loginToken(t, ts)

	agent := createAgent(t, ts, token, "worker")
	task := createTask(t, ts, token, "finished", []int64{agent.ID})
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	resp := doJSON(t, ts, http.MethodDelete, path, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, ts, http.MethodGet, path, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, ts, http.MethodDelete, path, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}
