package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/taskhive/taskhive-be/internal/auth"
	"github.com/taskhive/taskhive-be/internal/models"
	"github.com/taskhive/taskhive-be/internal/services"
)

// TaskHandler handles HTTP requests for the caller's tasks. Every operation
// is scoped to the authenticated user; tasks owned by someone else are
// reported as not found.
type TaskHandler struct {
	tasks  services.TaskServiceProvider
	events services.EventServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks services.TaskServiceProvider, events services.EventServiceProvider) *TaskHandler {
	return &TaskHandler{tasks: tasks, events: events}
}

// CreateTaskPayload defines the structure for task creation requests.
type CreateTaskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// UpdateTaskPayload defines the structure for partial task updates. Nil
// fields were absent from the request and stay untouched; an explicit null
// dueDate clears the stored date.
type UpdateTaskPayload struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Status      *string             `json:"status"`
	Priority    *string             `json:"priority"`
	DueDate     models.OptionalDate `json:"dueDate"`
}

// Create handles task creation, defaulting status to todo and priority to
// medium when omitted.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Not authenticated. Please provide a valid token.")
		return
	}

	var payload CreateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Title == "" {
		RespondError(w, http.StatusBadRequest, "Task title is required")
		return
	}
	if fields := validateEnums(payload.Status, payload.Priority); len(fields) > 0 {
		RespondError(w, http.StatusBadRequest, "Validation error", fields...)
		return
	}

	var dueDate *time.Time
	if payload.DueDate != "" {
		t, err := models.ParseDate(payload.DueDate)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "Validation error", err.Error())
			return
		}
		dueDate = &t
	}

	task, err := h.tasks.CreateTask(userID, services.TaskCreate{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		DueDate:     dueDate,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create task")
		respondServiceError(w, err)
		return
	}

	h.events.RecordEvent("task.create", "info", fmt.Sprintf("Task %q created", task.Title), userID, &task.ID)
	RespondSuccess(w, http.StatusCreated, "Task created successfully", task)
}

// List returns the caller's tasks, optionally narrowed by exact status,
// exact priority, and a case-insensitive search over title/description.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Not authenticated. Please provide a valid token.")
		return
	}

	q := r.URL.Query()
	tasks, err := h.tasks.ListTasks(userID, services.TaskFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list tasks")
		respondServiceError(w, err)
		return
	}
	RespondList(w, tasks, len(tasks))
}

// Get returns a single owned task.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Not authenticated. Please provide a valid token.")
		return
	}

	task, err := h.tasks.GetTask(userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			RespondError(w, http.StatusNotFound, "Task not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, "", task)
}

// Update applies a partial update to an owned task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Not authenticated. Please provide a valid token.")
		return
	}

	var payload UpdateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var fields []string
	if payload.Title != nil && *payload.Title == "" {
		fields = append(fields, "title must not be empty")
	}
	if payload.Status != nil && !models.ValidStatus(*payload.Status) {
		fields = append(fields, "status must be one of: todo, in-progress, completed")
	}
	if payload.Priority != nil && !models.ValidPriority(*payload.Priority) {
		fields = append(fields, "priority must be one of: low, medium, high")
	}
	if len(fields) > 0 {
		RespondError(w, http.StatusBadRequest, "Validation error", fields...)
		return
	}

	id := chi.URLParam(r, "id")
	task, err := h.tasks.UpdateTask(userID, id, services.TaskUpdate{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		DueDate:     payload.DueDate,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			RespondError(w, http.StatusNotFound, "Task not found")
			return
		}
		log.Error().Err(err).Str("task_id", id).Msg("Failed to update task")
		respondServiceError(w, err)
		return
	}

	h.events.RecordEvent("task.update", "info", fmt.Sprintf("Task %q updated", task.Title), userID, &task.ID)
	RespondSuccess(w, http.StatusOK, "Task updated successfully", task)
}

// Delete removes an owned task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Not authenticated. Please provide a valid token.")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.tasks.DeleteTask(userID, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			RespondError(w, http.StatusNotFound, "Task not found")
			return
		}
		log.Error().Err(err).Str("task_id", id).Msg("Failed to delete task")
		respondServiceError(w, err)
		return
	}

	h.events.RecordEvent("task.delete", "info", "Task deleted", userID, &id)
	RespondSuccess(w, http.StatusOK, "Task deleted successfully", nil)
}

func validateEnums(status, priority string) []string {
	var fields []string
	if status != "" && !models.ValidStatus(status) {
		fields = append(fields, "status must be one of: todo, in-progress, completed")
	}
	if priority != "" && !models.ValidPriority(priority) {
		fields = append(fields, "priority must be one of: low, medium, high")
	}
	return fields
}
