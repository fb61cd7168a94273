// Package repo holds task and user persistence behind driver-neutral interfaces.
// Every task query is scoped by owner id.
package repo

import (
	"context"
	"errors"

	dom "github.com/hirmezb/tasktracker/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// TaskRepo stores tasks. Lookups by id return ErrNotFound when the task
// does not exist or belongs to another user.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, userID, id string) (dom.Task, error)
	List(ctx context.Context, userID string, f dom.TaskFilter) ([]dom.Task, error)
	// Update overwrites the mutable fields of the task matching t.ID and t.UserID.
	Update(ctx context.Context, t dom.Task) (dom.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// UserRepo provides user persistence. Create returns ErrDuplicate for a taken email.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	Create(ctx context.Context, u dom.User) (dom.User, error)
}
