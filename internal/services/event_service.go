package services

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/taskhive/taskhive-be/internal/models"
	"github.com/taskhive/taskhive-be/internal/websocket"
)

// Notifier pushes a message to every live connection belonging to a user.
type Notifier interface {
	BroadcastToUser(userID string, message []byte)
}

// EventServiceProvider defines the interface for activity-event services.
type EventServiceProvider interface {
	RecordEvent(eventType, level, message, userID string, taskID *string)
	GetRecentEvents(userID string, limit int) ([]models.Event, error)
}

// EventService records per-user activity events and pushes them to live
// connections.
type EventService struct {
	db       *sql.DB
	notifier Notifier
}

// NewEventService creates a new EventService. notifier may be nil.
func NewEventService(db *sql.DB, notifier Notifier) *EventService {
	return &EventService{db: db, notifier: notifier}
}

// RecordEvent logs a new event and notifies the owning user's connections.
// Event recording is best-effort: a failure is logged, never surfaced to the
// operation that triggered it.
func (s *EventService) RecordEvent(eventType, level, message, userID string, taskID *string) {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		TaskID:    taskID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO events (id, type, level, message, user_id, task_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.TaskID, event.CreatedAt,
	)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
		return
	}

	if s.notifier != nil {
		payload, err := json.Marshal(websocket.Message{Action: "event", Payload: event})
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode event notification")
			return
		}
		s.notifier.BroadcastToUser(userID, payload)
	}
}

// GetRecentEvents retrieves the caller's most recent events.
func (s *EventService) GetRecentEvents(userID string, limit int) ([]models.Event, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, user_id, task_id, created_at FROM events WHERE user_id = ? ORDER BY created_at DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.TaskID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
