package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'todo',
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		user_id TEXT NOT NULL,
		task_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id);
	`
	_, err := db.Exec(sqlStmt)
	return err
}

// Seed inserts the demo accounts and tasks used for local development. It is
// a no-op when any user already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	demoID, err := seedUser(db, "Demo User", "demo@example.com", "demo123")
	if err != nil {
		return err
	}
	if _, err := seedUser(db, "Test User", "test@example.com", "test123"); err != nil {
		return err
	}

	in2d := time.Now().Add(2 * 24 * time.Hour)
	in7d := time.Now().Add(7 * 24 * time.Hour)

	demoTasks := []struct {
		title, description, status, priority string
		dueDate                              *time.Time
	}{
		{"Complete project documentation", "Write comprehensive README and API documentation", "in-progress", "high", &in2d},
		{"Review pull requests", "Review and merge pending PRs from team members", "todo", "medium", nil},
		{"Deploy to production", "Deploy the application to production environment", "todo", "high", &in7d},
		{"Fix responsive design issues", "Address mobile layout issues on dashboard", "completed", "medium", nil},
	}

	for _, t := range demoTasks {
		_, err := db.Exec(
			"INSERT INTO tasks (id, user_id, title, description, status, priority, due_date) VALUES (?, ?, ?, ?, ?, ?, ?)",
			uuid.New().String(), demoID, t.title, t.description, t.status, t.priority, t.dueDate,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedUser(db *sql.DB, name, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err = db.Exec(
		"INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)",
		id, name, email, string(hash),
	)
	return id, err
}
