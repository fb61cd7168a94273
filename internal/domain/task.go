package domain

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates s. An empty string yields PriorityLow.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case "", PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	}
	return "", false
}

// Task is owned by exactly one user. UserID never changes after creation.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
	Completed   bool
	Category    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskFilter narrows a user's task list. Zero values mean "no filter".
type TaskFilter struct {
	Priority  Priority
	Category  string
	Completed *bool
}

// Matches reports whether t passes every set criterion.
func (f TaskFilter) Matches(t Task) bool {
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	return true
}

// Key is a stable string form of the filter, used for cache keys.
func (f TaskFilter) Key() string {
	done := "any"
	if f.Completed != nil {
		done = strconv.FormatBool(*f.Completed)
	}
	return url.Values{
		"p":    {string(f.Priority)},
		"c":    {f.Category},
		"done": {done},
	}.Encode()
}

// TaskPatch lists the fields a caller may change on an existing task.
// Nil pointers are left untouched. Owner, ID and CreatedAt are not patchable.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Category    *string
	Completed   *bool

	// DueDateSet distinguishes "clear the due date" (DueDate nil) from "leave it alone".
	DueDateSet bool
	DueDate    *time.Time
}

// Apply merges p over t and returns the result.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DueDateSet {
		t.DueDate = p.DueDate
	}
	return t
}

// SortByDueDate orders tasks by due date ascending, undated tasks last,
// ties broken by creation time.
func SortByDueDate(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		switch {
		case a.DueDate == nil && b.DueDate == nil:
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		default:
			if c := a.DueDate.Compare(*b.DueDate); c != 0 {
				return c
			}
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
