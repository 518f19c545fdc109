package services

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-be/internal/models"
)

// TaskFilter narrows a task listing. Zero values mean "no constraint".
// Status and priority are exact matches; search is a case-insensitive
// substring match over title OR description. All present predicates compose
// with AND.
type TaskFilter struct {
	Status   string
	Priority string
	Search   string
}

// TaskCreate carries the fields for a new task. Status and Priority default
// to "todo" and "medium" when empty.
type TaskCreate struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// TaskUpdate carries a partial update. Nil pointer fields are left untouched.
// DueDate is tri-state: absent leaves the stored date, explicit null clears
// it, a value replaces it.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     models.OptionalDate
}

// TaskServiceProvider defines the interface for task services. Every
// operation is scoped to the owning user: records owned by someone else are
// indistinguishable from missing ones.
type TaskServiceProvider interface {
	CreateTask(userID string, params TaskCreate) (models.Task, error)
	ListTasks(userID string, filter TaskFilter) ([]models.Task, error)
	GetTask(userID, id string) (models.Task, error)
	UpdateTask(userID, id string, update TaskUpdate) (models.Task, error)
	DeleteTask(userID, id string) error
}

// TaskService provides business logic for task management.
type TaskService struct {
	db *sql.DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *sql.DB) *TaskService {
	return &TaskService{db: db}
}

// CreateTask creates a task owned by userID, applying status/priority
// defaults.
func (s *TaskService) CreateTask(userID string, params TaskCreate) (models.Task, error) {
	now := time.Now().UTC()
	task := models.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	_, err := s.db.Exec(
		"INSERT INTO tasks (id, user_id, title, description, status, priority, due_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		task.ID, task.UserID, task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// ListTasks returns the caller's tasks, newest-created first, narrowed by
// the filter.
func (s *TaskService) ListTasks(userID string, filter TaskFilter) ([]models.Task, error) {
	query := "SELECT id, user_id, title, IFNULL(description, ''), status, priority, due_date, created_at, updated_at FROM tasks WHERE user_id = ?"
	args := []interface{}{userID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		query += " AND priority = ?"
		args = append(args, filter.Priority)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		query += ` AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(IFNULL(description, '')) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so a search term matches
// literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GetTask retrieves a single task by ID and owner simultaneously.
func (s *TaskService) GetTask(userID, id string) (models.Task, error) {
	row := s.db.QueryRow(
		"SELECT id, user_id, title, IFNULL(description, ''), status, priority, due_date, created_at, updated_at FROM tasks WHERE id = ? AND user_id = ?",
		id, userID,
	)
	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// UpdateTask applies a partial update to an owned task.
func (s *TaskService) UpdateTask(userID, id string, update TaskUpdate) (models.Task, error) {
	task, err := s.GetTask(userID, id)
	if err != nil {
		return models.Task{}, err
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.DueDate.Set {
		if update.DueDate.Valid {
			t := update.DueDate.Time
			task.DueDate = &t
		} else {
			task.DueDate = nil
		}
	}
	task.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		"UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.UpdatedAt, id, userID,
	)
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask removes an owned task.
func (s *TaskService) DeleteTask(userID, id string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDueTasks returns uncompleted tasks, across all users, whose due date
// has passed. Used by the background due-date sweeper.
func (s *TaskService) ListDueTasks(before time.Time) ([]models.Task, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, title, IFNULL(description, ''), status, priority, due_date, created_at, updated_at FROM tasks WHERE due_date IS NOT NULL AND due_date < ? AND status != ?",
		before, models.StatusCompleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (models.Task, error) {
	var task models.Task
	var due sql.NullTime
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description, &task.Status, &task.Priority, &due, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if due.Valid {
		task.DueDate = &due.Time
	}
	return task, nil
}
