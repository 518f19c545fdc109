package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func stubServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginStoresSessionAndAttachesToken(t *testing.T) {
	var gotAuth string
	srv := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"token": "token-abc",
					"user":  map[string]string{"id": "u1", "name": "Alice", "email": "a@x.com"},
				},
			})
		case "/api/v1/me":
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    map[string]string{"id": "u1", "name": "Alice", "email": "a@x.com"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	store := NewMemoryStore()
	c := New(srv.URL, store)

	user, err := c.Login("a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user ID = %q", user.ID)
	}

	session, ok, _ := store.Load()
	if !ok || session.Token != "token-abc" {
		t.Fatalf("session not stored: %+v ok=%v", session, ok)
	}

	if _, err := c.Me(); err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if gotAuth != "Bearer token-abc" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
}

func TestAuthenticatedCallWithoutSession(t *testing.T) {
	srv := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})

	c := New(srv.URL, NewMemoryStore())
	if _, err := c.Me(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("got %v, want ErrNotLoggedIn", err)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	store := NewMemoryStore()
	store.Save(Session{Token: "token-abc"})

	c := New("http://unused", store)
	if err := c.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Error("session survived Logout")
	}
}

func TestUpdateTaskDueDateEncoding(t *testing.T) {
	var gotBody map[string]json.RawMessage
	srv := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := map[string]json.RawMessage{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		gotBody = body
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]string{"id": "t1", "title": "Report"},
		})
	})

	store := NewMemoryStore()
	store.Save(Session{Token: "token-abc"})
	c := New(srv.URL, store)

	// ClearDueDate must serialize an explicit null.
	if _, err := c.UpdateTask("t1", TaskPatch{ClearDueDate: true}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	raw, present := gotBody["dueDate"]
	if !present || string(raw) != "null" {
		t.Errorf("dueDate = %q (present=%v), want explicit null", raw, present)
	}

	// A patch without due-date changes must omit the key entirely.
	title := "Renamed"
	if _, err := c.UpdateTask("t1", TaskPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if _, present := gotBody["dueDate"]; present {
		t.Error("dueDate key sent for a patch that does not touch it")
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	srv := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Email already registered",
		})
	})

	c := New(srv.URL, NewMemoryStore())
	_, err := c.Signup("A", "a@x.com", "secret1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Email already registered" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}
