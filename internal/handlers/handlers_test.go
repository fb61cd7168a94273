package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hirmezb/tasktracker/internal/dto"
	"github.com/hirmezb/tasktracker/internal/logging"
	"github.com/hirmezb/tasktracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound, `{"error":"task not found"}`},
		{"title", service.ErrTitleRequired, http.StatusBadRequest, `{"error":"title is required"}`},
		{"priority", service.ErrInvalidPriority, http.StatusBadRequest, `{"error":"priority must be one of low, medium, high"}`},
		{"email taken", service.ErrEmailTaken, http.StatusBadRequest, `{"error":"email already registered"}`},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, `{"error":"invalid email or password"}`},
		{"internal", errors.New("pq: relation tasks does not exist"), http.StatusInternalServerError, `{"error":"server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(&logs, nil)))

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

			writeServiceError(c, log, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			if tt.status == http.StatusInternalServerError {
				assert.Contains(t, logs.String(), "relation tasks does not exist")
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestBindErrorMessage(t *testing.T) {
	bind := func(body string, req any) string {
		t.Helper()
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		c.Request.Header.Set("Content-Type", "application/json")
		require.False(t, bindJSON(c, req))
		require.Equal(t, http.StatusBadRequest, w.Code)
		var res dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		return res.Error
	}

	assert.Equal(t, "title is required", bind(`{}`, &dto.CreateTaskRequest{}))
	assert.Equal(t, "priority must be one of low, medium, high", bind(`{"title":"x","priority":"asap"}`, &dto.CreateTaskRequest{}))
	assert.Equal(t, dto.ErrInvalidDueDate.Error(), bind(`{"title":"x","dueDate":"soon"}`, &dto.CreateTaskRequest{}))
	assert.Equal(t, "email must be a valid email address", bind(`{"name":"a","email":"nope","password":"secret1"}`, &dto.RegisterRequest{}))
	assert.Equal(t, "password must be at least 6 characters", bind(`{"name":"a","email":"a@b.co","password":"123"}`, &dto.RegisterRequest{}))
	assert.Equal(t, "invalid request body", bind(`[1,2`, &dto.LoginRequest{}))
}

func TestFilterFromQuery(t *testing.T) {
	tests := []struct {
		query     string
		priority  string
		category  string
		completed *bool
	}{
		{query: ""},
		{query: "completed=true", completed: ptr(true)},
		{query: "completed=false", completed: ptr(false)},
		{query: "completed=yes", completed: ptr(false)},
		{query: "completed=", completed: nil},
		{query: "priority=high&category=work", priority: "high", category: "work"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/api/tasks?"+tt.query, nil)

			f := filterFromQuery(c)
			assert.Equal(t, tt.priority, string(f.Priority))
			assert.Equal(t, tt.category, f.Category)
			assert.Equal(t, tt.completed, f.Completed)
		})
	}
}

func ptr[T any](v T) *T { return &v }
