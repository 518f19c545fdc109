package services

import (
	"errors"
	"testing"
	"time"

	"github.com/taskhive/taskhive-be/internal/models"
)

func TestCreateTaskDefaults(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	tasks := NewTaskService(db)
	userID := newTestUser(t, users, "Alice", "a@x.com")

	task, err := tasks.CreateTask(userID, TaskCreate{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Status != models.StatusTodo {
		t.Errorf("status = %q, want todo", task.Status)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want medium", task.Priority)
	}
	if task.DueDate != nil {
		t.Errorf("due date should be unset, got %v", task.DueDate)
	}

	got, err := tasks.GetTask(userID, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Buy milk" || got.Status != models.StatusTodo || got.Priority != models.PriorityMedium {
		t.Errorf("stored task differs: %+v", got)
	}
}

func TestTaskOwnershipScoping(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	tasks := NewTaskService(db)
	aliceID := newTestUser(t, users, "Alice", "a@x.com")
	bobID := newTestUser(t, users, "Bob", "b@x.com")

	task, err := tasks.CreateTask(aliceID, TaskCreate{Title: "Alice's task"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// To Bob, Alice's task must look exactly like a missing record.
	if _, err := tasks.GetTask(bobID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: got %v, want ErrNotFound", err)
	}
	title := "hijacked"
	if _, err := tasks.UpdateTask(bobID, task.ID, TaskUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update: got %v, want ErrNotFound", err)
	}
	if err := tasks.DeleteTask(bobID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: got %v, want ErrNotFound", err)
	}

	listed, err := tasks.ListTasks(bobID, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("Bob sees %d tasks, want 0", len(listed))
	}

	// Alice still owns an intact task.
	got, err := tasks.GetTask(aliceID, task.ID)
	if err != nil {
		t.Fatalf("owner GetTask failed: %v", err)
	}
	if got.Title != "Alice's task" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestListTasksFilters(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	tasks := NewTaskService(db)
	userID := newTestUser(t, users, "Alice", "a@x.com")

	seed := []TaskCreate{
		{Title: "Deploy to production", Status: models.StatusCompleted, Priority: models.PriorityHigh},
		{Title: "Write docs", Description: "deployment runbook", Status: models.StatusCompleted},
		{Title: "Deploy staging", Status: models.StatusTodo},
		{Title: "Buy milk", Priority: models.PriorityLow},
	}
	for _, params := range seed {
		if _, err := tasks.CreateTask(userID, params); err != nil {
			t.Fatalf("CreateTask(%q) failed: %v", params.Title, err)
		}
	}

	t.Run("status and search compose with AND", func(t *testing.T) {
		// "deploy" matches title or description, case-insensitively; only
		// completed tasks qualify.
		got, err := tasks.ListTasks(userID, TaskFilter{Status: models.StatusCompleted, Search: "DEPLOY"})
		if err != nil {
			t.Fatalf("ListTasks failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d tasks, want 2: %+v", len(got), got)
		}
		for _, task := range got {
			if task.Status != models.StatusCompleted {
				t.Errorf("task %q has status %q", task.Title, task.Status)
			}
		}
	})

	t.Run("priority filter", func(t *testing.T) {
		got, err := tasks.ListTasks(userID, TaskFilter{Priority: models.PriorityLow})
		if err != nil {
			t.Fatalf("ListTasks failed: %v", err)
		}
		if len(got) != 1 || got[0].Title != "Buy milk" {
			t.Errorf("got %+v, want only Buy milk", got)
		}
	})

	t.Run("no filter returns all", func(t *testing.T) {
		got, err := tasks.ListTasks(userID, TaskFilter{})
		if err != nil {
			t.Fatalf("ListTasks failed: %v", err)
		}
		if len(got) != 4 {
			t.Errorf("got %d tasks, want 4", len(got))
		}
	})

	t.Run("search metacharacters match literally", func(t *testing.T) {
		for _, params := range []TaskCreate{
			{Title: "Progress 50%"},
			{Title: "Progress 5000"},
			{Title: "export_csv"},
			{Title: "exportXcsv"},
		} {
			if _, err := tasks.CreateTask(userID, params); err != nil {
				t.Fatalf("CreateTask(%q) failed: %v", params.Title, err)
			}
		}

		got, err := tasks.ListTasks(userID, TaskFilter{Search: "50%"})
		if err != nil {
			t.Fatalf("ListTasks failed: %v", err)
		}
		if len(got) != 1 || got[0].Title != "Progress 50%" {
			t.Errorf("%% treated as wildcard: %+v", got)
		}

		got, err = tasks.ListTasks(userID, TaskFilter{Search: "export_"})
		if err != nil {
			t.Fatalf("ListTasks failed: %v", err)
		}
		if len(got) != 1 || got[0].Title != "export_csv" {
			t.Errorf("_ treated as wildcard: %+v", got)
		}
	})
}

func TestListTasksOrdering(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	tasks := NewTaskService(db)
	userID := newTestUser(t, users, "Alice", "a@x.com")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"oldest", "middle", "newest"} {
		task, err := tasks.CreateTask(userID, TaskCreate{Title: title})
		if err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
		// Pin distinct creation times so the order is deterministic.
		createdAt := base.Add(time.Duration(i) * time.Hour)
		if _, err := db.Exec("UPDATE tasks SET created_at = ? WHERE id = ?", createdAt, task.ID); err != nil {
			t.Fatalf("pin created_at: %v", err)
		}
	}

	got, err := tasks.ListTasks(userID, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	want := []string{"newest", "middle", "oldest"}
	if len(got) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("position %d: got %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestUpdateTaskPartialAndDueDate(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	tasks := NewTaskService(db)
	userID := newTestUser(t, users, "Alice", "a@x.com")

	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	task, err := tasks.CreateTask(userID, TaskCreate{Title: "Report", Description: "Q2 report", DueDate: &due})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	t.Run("absent dueDate leaves it unchanged", func(t *testing.T) {
		status := models.StatusInProgress
		got, err := tasks.UpdateTask(userID, task.ID, TaskUpdate{Status: &status})
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if got.Status != models.StatusInProgress {
			t.Errorf("status = %q", got.Status)
		}
		if got.DueDate == nil || !got.DueDate.Equal(due) {
			t.Errorf("due date changed: %v", got.DueDate)
		}
		if got.Title != "Report" || got.Description != "Q2 report" {
			t.Errorf("untouched fields changed: %+v", got)
		}
	})

	t.Run("explicit null clears dueDate", func(t *testing.T) {
		got, err := tasks.UpdateTask(userID, task.ID, TaskUpdate{
			DueDate: models.OptionalDate{Set: true, Valid: false},
		})
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if got.DueDate != nil {
			t.Errorf("due date not cleared: %v", got.DueDate)
		}

		stored, err := tasks.GetTask(userID, task.ID)
		if err != nil {
			t.Fatalf("GetTask failed: %v", err)
		}
		if stored.DueDate != nil {
			t.Errorf("stored due date not cleared: %v", stored.DueDate)
		}
	})

	t.Run("new value replaces dueDate", func(t *testing.T) {
		next := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		got, err := tasks.UpdateTask(userID, task.ID, TaskUpdate{
			DueDate: models.OptionalDate{Set: true, Valid: true, Time: next},
		})
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if got.DueDate == nil || !got.DueDate.Equal(next) {
			t.Errorf("due date = %v, want %v", got.DueDate, next)
		}
	})
}

func TestDeleteTask(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	tasks := NewTaskService(db)
	userID := newTestUser(t, users, "Alice", "a@x.com")

	task, err := tasks.CreateTask(userID, TaskCreate{Title: "Ephemeral"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := tasks.DeleteTask(userID, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := tasks.GetTask(userID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound after delete", err)
	}
	if err := tasks.DeleteTask(userID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestListDueTasks(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	tasks := NewTaskService(db)
	userID := newTestUser(t, users, "Alice", "a@x.com")

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if _, err := tasks.CreateTask(userID, TaskCreate{Title: "overdue", DueDate: &past}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := tasks.CreateTask(userID, TaskCreate{Title: "overdue but done", Status: models.StatusCompleted, DueDate: &past}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := tasks.CreateTask(userID, TaskCreate{Title: "not yet due", DueDate: &future}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := tasks.CreateTask(userID, TaskCreate{Title: "no due date"}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	due, err := tasks.ListDueTasks(now)
	if err != nil {
		t.Fatalf("ListDueTasks failed: %v", err)
	}
	if len(due) != 1 || due[0].Title != "overdue" {
		t.Errorf("got %+v, want only the overdue task", due)
	}
}
