package models

import "time"

// Event represents a loggable action or alert in the system.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g. "task.create", "task.due"
	Level     string    `json:"level"` // e.g. "info", "warn"
	Message   string    `json:"message"`
	UserID    string    `json:"-"`
	TaskID    *string   `json:"taskId,omitempty"` // Nullable for account-level events
	CreatedAt time.Time `json:"createdAt"`
}
