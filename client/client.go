// Package client is a Go client for the taskhive API. It plays the role the
// browser frontend does: it keeps the token/user pair in an injected
// SessionStore, attaches the bearer token to every request, and re-syncs the
// session after signup and login.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/taskhive/taskhive-be/internal/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// ErrNotLoggedIn is returned when an authenticated call is made with no
// stored session.
var ErrNotLoggedIn = fmt.Errorf("not logged in")

// Client talks to a taskhive server.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   SessionStore
}

// New creates a Client for the server at baseURL, persisting its session in
// store.
func New(baseURL string, store SessionStore) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		store:   store,
	}
}

// apiEnvelope mirrors the server's uniform response wrapper.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

// sessionData mirrors the signup/login response body.
type sessionData struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// ListOptions narrow a task listing.
type ListOptions struct {
	Search   string
	Status   string
	Priority string
}

// TaskPatch is a partial task update. Nil fields are omitted from the
// request and stay untouched server-side. ClearDueDate sends an explicit
// null, which clears the stored due date.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *string
	ClearDueDate bool
}

// Signup registers an account and stores the returned session.
func (c *Client) Signup(name, email, password string) (models.User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var data sessionData
	if err := c.do(http.MethodPost, "/api/v1/auth/signup", body, false, &data); err != nil {
		return models.User{}, err
	}
	if err := c.store.Save(Session{Token: data.Token, User: data.User}); err != nil {
		return models.User{}, err
	}
	return data.User, nil
}

// Login authenticates and stores the returned session.
func (c *Client) Login(email, password string) (models.User, error) {
	body := map[string]string{"email": email, "password": password}
	var data sessionData
	if err := c.do(http.MethodPost, "/api/v1/auth/login", body, false, &data); err != nil {
		return models.User{}, err
	}
	if err := c.store.Save(Session{Token: data.Token, User: data.User}); err != nil {
		return models.User{}, err
	}
	return data.User, nil
}

// Logout clears the stored session. The server keeps no session state, so
// nothing is sent.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Me fetches the caller's profile.
func (c *Client) Me() (models.User, error) {
	var user models.User
	err := c.do(http.MethodGet, "/api/v1/me", nil, true, &user)
	return user, err
}

// UpdateProfile updates the caller's name and/or email; nil fields are left
// untouched. The stored session's user is re-synced on success.
func (c *Client) UpdateProfile(name, email *string) (models.User, error) {
	body := map[string]interface{}{}
	if name != nil {
		body["name"] = *name
	}
	if email != nil {
		body["email"] = *email
	}

	var user models.User
	if err := c.do(http.MethodPut, "/api/v1/me", body, true, &user); err != nil {
		return models.User{}, err
	}

	if session, ok, err := c.store.Load(); err == nil && ok {
		session.User = user
		if err := c.store.Save(session); err != nil {
			return models.User{}, err
		}
	}
	return user, nil
}

// CreateTask creates a task. Empty status/priority default server-side.
func (c *Client) CreateTask(title, description, status, priority, dueDate string) (models.Task, error) {
	body := map[string]string{"title": title}
	if description != "" {
		body["description"] = description
	}
	if status != "" {
		body["status"] = status
	}
	if priority != "" {
		body["priority"] = priority
	}
	if dueDate != "" {
		body["dueDate"] = dueDate
	}

	var task models.Task
	err := c.do(http.MethodPost, "/api/v1/tasks", body, true, &task)
	return task, err
}

// ListTasks lists the caller's tasks, newest first.
func (c *Client) ListTasks(opts ListOptions) ([]models.Task, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Priority != "" {
		q.Set("priority", opts.Priority)
	}
	path := "/api/v1/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var tasks []models.Task
	err := c.do(http.MethodGet, path, nil, true, &tasks)
	return tasks, err
}

// GetTask fetches one owned task.
func (c *Client) GetTask(id string) (models.Task, error) {
	var task models.Task
	err := c.do(http.MethodGet, "/api/v1/tasks/"+url.PathEscape(id), nil, true, &task)
	return task, err
}

// UpdateTask applies a partial update to an owned task.
func (c *Client) UpdateTask(id string, patch TaskPatch) (models.Task, error) {
	body := map[string]interface{}{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Status != nil {
		body["status"] = *patch.Status
	}
	if patch.Priority != nil {
		body["priority"] = *patch.Priority
	}
	if patch.ClearDueDate {
		body["dueDate"] = nil
	} else if patch.DueDate != nil {
		body["dueDate"] = *patch.DueDate
	}

	var task models.Task
	err := c.do(http.MethodPut, "/api/v1/tasks/"+url.PathEscape(id), body, true, &task)
	return task, err
}

// DeleteTask removes an owned task.
func (c *Client) DeleteTask(id string) error {
	return c.do(http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(id), nil, true, nil)
}

// do performs one API call, decoding the envelope and unwrapping data into
// out (which may be nil).
func (c *Client) do(method, path string, body interface{}, authed bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		session, ok, err := c.store.Load()
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
