package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/taskhive/taskhive-be/internal/database"
)

// newTestDB opens a throwaway SQLite database with the full schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newTestUser registers a user and returns their ID.
func newTestUser(t *testing.T, users *UserService, name, email string) string {
	t.Helper()
	user, err := users.CreateUser(name, email, "secret1")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user.ID
}
