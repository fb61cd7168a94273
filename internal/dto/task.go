package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	dom "github.com/hirmezb/tasktracker/internal/domain"
)

var ErrInvalidDueDate = errors.New("dueDate: use date (YYYY-MM-DD) or RFC3339 datetime")

var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// DueDate parses dueDate from JSON as either date-only ("2006-01-02") or RFC3339.
// Date-only is stored as start of that day in UTC. Set reports whether the
// field was present in the body at all, so null can clear a stored date.
type DueDate struct {
	Set bool
	t   *time.Time
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidDueDate
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	t, err := ParseDueDate(*raw)
	if err != nil {
		return err
	}
	d.t = &t
	return nil
}

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

// ParseDueDate accepts the same layouts as the JSON form. Also used by the CLI flags.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" || layout == "2006-01-02T15:04:05" {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
				parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC)
		}
		return parsed.UTC(), nil
	}
	return time.Time{}, ErrInvalidDueDate
}

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high" enums:"low,medium,high"`
	DueDate     DueDate `json:"dueDate" swaggertype:"string" example:"2026-07-04"` // optional
	Category    string  `json:"category" binding:"max=100"`
}

// UpdateTaskRequest holds the allow-listed mutable fields. Anything else in the
// body (id, user, createdAt) is ignored by decoding.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high" enums:"low,medium,high"`
	DueDate     DueDate `json:"dueDate" swaggertype:"string"` // absent = keep, null = clear
	Category    *string `json:"category" binding:"omitempty,max=100"`
	Completed   *bool   `json:"completed"`
}

// ToPatch converts the request into a domain patch.
func (r UpdateTaskRequest) ToPatch() dom.TaskPatch {
	p := dom.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Completed:   r.Completed,
		DueDateSet:  r.DueDate.Set,
		DueDate:     r.DueDate.Ptr(),
	}
	if r.Priority != nil {
		pr := dom.Priority(*r.Priority)
		p.Priority = &pr
	}
	return p
}

type TaskResponse struct {
	ID          string     `json:"id"`
	User        string     `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
	Category    string     `json:"category"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
