package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hirmezb/tasktracker/internal/dto"
)

// ErrUnauthorized is returned when the server rejects the stored token.
// The local session has already been cleared when it is returned.
var ErrUnauthorized = errors.New("session expired, please log in")

// ErrNotLoggedIn is returned before any request is made when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in, run `taskctl login` first")

const fallbackMessage = "something went wrong, please try again"

// APIError carries the server's error message for non-2xx answers.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fallbackMessage
	}
	return e.Message
}

// NewTask is the body of a create request. DueDate is YYYY-MM-DD or RFC3339.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Category    string `json:"category,omitempty"`
}

// TaskChanges lists the fields to change. Nil fields are not sent.
type TaskChanges struct {
	Title        *string
	Description  *string
	Priority     *string
	Category     *string
	Completed    *bool
	DueDate      *string
	ClearDueDate bool
}

func (c TaskChanges) body() map[string]any {
	m := make(map[string]any)
	if c.Title != nil {
		m["title"] = *c.Title
	}
	if c.Description != nil {
		m["description"] = *c.Description
	}
	if c.Priority != nil {
		m["priority"] = *c.Priority
	}
	if c.Category != nil {
		m["category"] = *c.Category
	}
	if c.Completed != nil {
		m["completed"] = *c.Completed
	}
	switch {
	case c.ClearDueDate:
		m["dueDate"] = nil
	case c.DueDate != nil:
		m["dueDate"] = *c.DueDate
	}
	return m
}

// Empty reports whether no change was requested.
func (c TaskChanges) Empty() bool { return len(c.body()) == 0 }

// Client talks to the task tracker REST API and keeps the session file in sync.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *SessionStore
}

func New(baseURL string, sessions *SessionStore, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
	}
}

// Session returns the stored session.
func (c *Client) Session() (Session, error) {
	return c.sessions.Load()
}

func (c *Client) Register(ctx context.Context, name, email, password string) (dto.AuthResponse, error) {
	var res dto.AuthResponse
	body := dto.RegisterRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/users/register", "", body, &res); err != nil {
		return dto.AuthResponse{}, err
	}
	return res, c.storeAuth(res)
}

func (c *Client) Login(ctx context.Context, email, password string) (dto.AuthResponse, error) {
	var res dto.AuthResponse
	body := dto.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/users/login", "", body, &res); err != nil {
		return dto.AuthResponse{}, err
	}
	return res, c.storeAuth(res)
}

// Logout revokes the token server-side when possible and always clears it locally.
func (c *Client) Logout(ctx context.Context) error {
	sess, err := c.sessions.Load()
	if err != nil {
		return err
	}
	var remoteErr error
	if sess.LoggedIn() {
		remoteErr = c.do(ctx, http.MethodPost, "/users/logout", sess.Token, nil, nil)
		if errors.Is(remoteErr, ErrUnauthorized) {
			remoteErr = nil
		}
	}
	if err := c.sessions.ClearAuth(); err != nil {
		return err
	}
	return remoteErr
}

func (c *Client) ListTasks(ctx context.Context, f Filter) ([]dto.TaskResponse, error) {
	q := url.Values{}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Completed != "" {
		q.Set("completed", f.Completed)
	}
	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	list := []dto.TaskResponse{}
	if err := c.authed(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (dto.TaskResponse, error) {
	var t dto.TaskResponse
	err := c.authed(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &t)
	return t, err
}

func (c *Client) CreateTask(ctx context.Context, in NewTask) (dto.TaskResponse, error) {
	var t dto.TaskResponse
	err := c.authed(ctx, http.MethodPost, "/tasks", in, &t)
	return t, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, changes TaskChanges) (dto.TaskResponse, error) {
	var t dto.TaskResponse
	err := c.authed(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), changes.body(), &t)
	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) (string, error) {
	var res dto.MessageResponse
	if err := c.authed(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) storeAuth(res dto.AuthResponse) error {
	sess, err := c.sessions.Load()
	if err != nil {
		sess = Session{}
	}
	sess.Token = res.Token
	sess.User = res.User
	return c.sessions.Save(sess)
}

// authed sends a request with the stored token.
func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	sess, err := c.sessions.Load()
	if err != nil {
		return err
	}
	if !sess.LoggedIn() {
		return ErrNotLoggedIn
	}
	return c.do(ctx, method, path, sess.Token, body, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		if err := c.sessions.ClearAuth(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e dto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
