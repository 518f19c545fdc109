package services

import (
	"encoding/json"
	"testing"
)

type captureNotifier struct {
	userIDs  []string
	payloads [][]byte
}

func (n *captureNotifier) BroadcastToUser(userID string, message []byte) {
	n.userIDs = append(n.userIDs, userID)
	n.payloads = append(n.payloads, message)
}

func TestRecordAndListEvents(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	notifier := &captureNotifier{}
	events := NewEventService(db, notifier)

	aliceID := newTestUser(t, users, "Alice", "a@x.com")
	bobID := newTestUser(t, users, "Bob", "b@x.com")

	taskID := "task-1"
	events.RecordEvent("task.create", "info", "Task created", aliceID, &taskID)
	events.RecordEvent("user.login", "info", "Logged in", bobID, nil)

	// Listing is scoped: Alice only sees her own events.
	got, err := events.GetRecentEvents(aliceID, 10)
	if err != nil {
		t.Fatalf("GetRecentEvents failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Type != "task.create" || got[0].TaskID == nil || *got[0].TaskID != taskID {
		t.Errorf("unexpected event: %+v", got[0])
	}

	// Each event was pushed to its owner.
	if len(notifier.userIDs) != 2 || notifier.userIDs[0] != aliceID || notifier.userIDs[1] != bobID {
		t.Errorf("notified users = %v", notifier.userIDs)
	}
	var msg struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(notifier.payloads[0], &msg); err != nil {
		t.Fatalf("notification is not JSON: %v", err)
	}
	if msg.Action != "event" {
		t.Errorf("action = %q", msg.Action)
	}
}
