package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hollis/gaffer/internal/model"
)

func makeTestTask(title string) *model.Task {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Task{
		Title:       title,
		Description: title + " description",
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func seedTask(t *testing.T, s *SQLiteStore, title string, agentIDs []int64) *model.Task {
	t.Helper()
	task := makeTestTask(title)
	if err := s.CreateTask(context.Background(), task, agentIDs); err != nil {
		t.Fatalf("CreateTask(%q): %v", title, err)
	}
	return task
}

func agentIDsOf(task *model.Task) []int64 {
	ids := make([]int64, len(task.Agents))
	for i, a := range task.Agents {
		ids[i] = a.ID
	}
	return ids
}

func TestCreateTaskWithAgents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a1 := seedAgent(t, s, "first")
	a2 := seedAgent(t, s, "second")

	task := makeTestTask("backup")
	if err := s.CreateTask(ctx, task, []int64{a1.ID, a2.ID}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == 0 {
		t.Error("ID = 0, expected auto-increment id")
	}
	if len(task.Agents) != 2 {
		t.Fatalf("len(Agents) = %d, want 2", len(task.Agents))
	}
	if task.Agents[0].ID != a1.ID || task.Agents[1].ID != a2.ID {
		t.Errorf("agent ids = %v, want [%d %d]", agentIDsOf(task), a1.ID, a2.ID)
	}
	if task.Agents[0].Name != "first" {
		t.Errorf("Agents[0].Name = %q, want %q", task.Agents[0].Name, "first")
	}

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "backup" {
		t.Errorf("Title = %q, want %q", got.Title, "backup")
	}
	if got.Status != model.StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, model.StatusPending)
	}
	if len(got.Agents) != 2 {
		t.Errorf("len(Agents) = %d, want 2", len(got.Agents))
	}
}

func TestCreateTaskUnknownAgent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedAgent(t, s, "real")

	task := makeTestTask("backup")
	err := s.CreateTask(ctx, task, []int64{a.ID, 999})
	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("got error %v, want ErrAgentNotFound", err)
	}

	// The transaction rolled back: no task row persisted.
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}
}

func TestCreateTaskSoftDeletedAgent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedAgent(t, s, "gone")

	if err := s.SoftDeleteAgent(ctx, a.ID); err != nil {
		t.Fatalf("SoftDeleteAgent: %v", err)
	}

	err := s.CreateTask(ctx, makeTestTask("backup"), []int64{a.ID})
	if !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("got error %v, want ErrAgentNotFound", err)
	}
}

func TestCreateTaskDuplicateAgentIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedAgent(t, s, "solo")

	// Duplicates fail the count match.
	err := s.CreateTask(ctx, makeTestTask("backup"), []int64{a.ID, a.ID})
	if !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("got error %v, want ErrAgentNotFound", err)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTask(context.Background(), 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}

	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("error %v is not a *NotFoundError", err)
	}
	if nfe.Entity != EntityTask {
		t.Errorf("Entity = %q, want %q", nfe.Entity, EntityTask)
	}
}

func TestGetTaskAgentsInIDOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a1 := seedAgent(t, s, "low")
	a2 := seedAgent(t, s, "high")

	// Assign in reverse order; response order is by agent id.
	task := seedTask(t, s, "ordered", []int64{a2.ID, a1.ID})

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	ids := agentIDsOf(got)
	if len(ids) != 2 || ids[0] != a1.ID || ids[1] != a2.ID {
		t.Errorf("agent ids = %v, want [%d %d]", ids, a1.ID, a2.ID)
	}
}

func TestListTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a1 := seedAgent(t, s, "one")
	a2 := seedAgent(t, s, "two")

	t1 := seedTask(t, s, "first", []int64{a1.ID})
	t2 := seedTask(t, s, "second", []int64{a1.ID, a2.ID})

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	if tasks[0].ID != t1.ID || tasks[1].ID != t2.ID {
		t.Errorf("task ids = [%d %d], want [%d %d]", tasks[0].ID, tasks[1].ID, t1.ID, t2.ID)
	}
	if len(tasks[0].Agents) != 1 {
		t.Errorf("tasks[0] len(Agents) = %d, want 1", len(tasks[0].Agents))
	}
	if len(tasks[1].Agents) != 2 {
		t.Errorf("tasks[1] len(Agents) = %d, want 2", len(tasks[1].Agents))
	}
}

func TestListTasksEmpty(t *testing.T) {
	s := newTestStore(t)

	tasks, err := s.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}
}

func TestUpdateTaskFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedAgent(t, s, "worker")
	task := seedTask(t, s, "original", []int64{a.ID})

	title := "renamed"
	status := model.StatusCompleted
	got, err := s.UpdateTask(ctx, task.ID, TaskUpdate{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.Title != "renamed" {
		t.Errorf("Title = %q, want %q", got.Title, "renamed")
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, model.StatusCompleted)
	}
	// Omitted fields keep their values.
	if got.Description != task.Description {
		t.Errorf("Description = %q, want %q", got.Description, task.Description)
	}
	if len(got.Agents) != 1 || got.Agents[0].ID != a.ID {
		t.Errorf("Agents = %v, want [%d]", agentIDsOf(got), a.ID)
	}
}

func TestUpdateTaskReplacesAgents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a1 := seedAgent(t, s, "old")
	a2 := seedAgent(t, s, "new1")
	a3 := seedAgent(t, s, "new2")
	task := seedTask(t, s, "reassign", []int64{a1.ID})

	got, err := s.UpdateTask(ctx, task.ID, TaskUpdate{AgentIDs: []int64{a2.ID, a3.ID}})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	ids := agentIDsOf(got)
	if len(ids) != 2 || ids[0] != a2.ID || ids[1] != a3.ID {
		t.Errorf("agent ids = %v, want [%d %d]", ids, a2.ID, a3.ID)
	}
}

func TestUpdateTaskEmptyAgentListClears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedAgent(t, s, "worker")
	task := seedTask(t, s, "clearing", []int64{a.ID})

	got, err := s.UpdateTask(ctx, task.ID, TaskUpdate{AgentIDs: []int64{}})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(got.Agents) != 0 {
		t.Errorf("len(Agents) = %d, want 0", len(got.Agents))
	}
}

func TestUpdateTaskUnknownAgentRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedAgent(t, s, "worker")
	task := seedTask(t, s, "stable", []int64{a.ID})

	_, err := s.UpdateTask(ctx, task.ID, TaskUpdate{AgentIDs: []int64{999}})
	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("got error %v, want ErrAgentNotFound", err)
	}

	// Original assignment survives the failed update.
	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if len(got.Agents) != 1 || got.Agents[0].ID != a.ID {
		t.Errorf("Agents = %v, want [%d]", agentIDsOf(got), a.ID)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := newTestStore(t)

	title := "ghost"
	_, err := s.UpdateTask(context.Background(), 99, TaskUpdate{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got error %v, want ErrNotFound", err)
	}
}

func TestSoftDeleteTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedAgent(t, s, "worker")
	task := seedTask(t, s, "doomed", []int64{a.ID})

	if err := s.SoftDeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("SoftDeleteTask: %v", err)
	}

	if _, err := s.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask after delete: got error %v, want ErrNotFound", err)
	}

	// Assignments are preserved for history.
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM task_agents WHERE task_id = ?", task.ID,
	).Scan(&count); err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if count != 1 {
		t.Errorf("assignment count = %d, want 1", count)
	}
}

func TestSoftDeleteTaskTwice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedAgent(t, s, "worker")
	task := seedTask(t, s, "doomed", []int64{a.ID})

	if err := s.SoftDeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("SoftDeleteTask: %v", err)
	}
	if err := s.SoftDeleteTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got error %v, want ErrNotFound", err)
	}
}

func TestTaskKeepsSoftDeletedAgentInList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedAgent(t, s, "retiring")
	task := seedTask(t, s, "historic", []int64{a.ID})

	if err := s.SoftDeleteAgent(ctx, a.ID); err != nil {
		t.Fatalf("SoftDeleteAgent: %v", err)
	}

	// Existing assignments survive agent deletion; only new assignments
	// and new launches check agent liveness.
	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if len(got.Agents) != 1 || got.Agents[0].ID != a.ID {
		t.Errorf("Agents = %v, want [%d]", agentIDsOf(got), a.ID)
	}
}
