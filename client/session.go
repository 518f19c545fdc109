package client

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/taskhive/taskhive-be/internal/models"
)

// Session is the token/user pair a client keeps between requests, the same
// pair the browser UI keeps in local storage.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SessionStore persists a session across client restarts. Implementations
// are injected into Client rather than accessed as a singleton.
type SessionStore interface {
	// Load returns the stored session, with ok=false when none is stored.
	Load() (session Session, ok bool, err error)
	Save(session Session) error
	// Clear removes the stored session entirely.
	Clear() error
}

// MemoryStore keeps the session in process memory. Suitable for tests and
// short-lived tools.
type MemoryStore struct {
	mu      sync.Mutex
	session Session
	ok      bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.ok, nil
}

func (s *MemoryStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.ok = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	s.ok = false
	return nil
}

// FileStore keeps the session as a JSON file, readable only by the owner.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore persisting to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Session, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, false, err
	}
	return session, session.Token != "", nil
}

func (s *FileStore) Save(session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
