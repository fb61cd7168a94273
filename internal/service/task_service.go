package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hirmezb/tasktracker/internal/cache"
	dom "github.com/hirmezb/tasktracker/internal/domain"
	"github.com/hirmezb/tasktracker/internal/logging"
	"github.com/hirmezb/tasktracker/internal/repo"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidPriority = errors.New("priority must be one of low, medium, high")
)

// CreateTaskInput carries the fields accepted on creation.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	Category    string
}

// TaskService applies the ownership-scoped task operations.
type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	log   logging.Logger
	sf    singleflight.Group
	now   func() time.Time
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache, log logging.Logger) *TaskService {
	return &TaskService{repo: r, cache: c, log: log, now: time.Now}
}

func (s *TaskService) List(ctx context.Context, userID string, f dom.TaskFilter) ([]dom.Task, error) {
	if s.cache == nil {
		return s.list(ctx, userID, f)
	}
	// The version is read before the store so a write that lands mid-read
	// moves later lookups to a fresh key.
	ver, err := s.cache.Version(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "task cache read failed", "user_id", userID, "error", err)
		return s.list(ctx, userID, f)
	}
	key := userID + ":" + strconv.FormatInt(ver, 10) + ":" + f.Key()
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		// Shared by every waiter on key; detached from the first caller's cancellation.
		ctx := context.WithoutCancel(ctx)
		list, err := s.cache.GetList(ctx, userID, ver, f)
		if err != nil {
			s.log.Warn(ctx, "task cache read failed", "user_id", userID, "error", err)
		} else if list != nil {
			return list, nil
		}
		list, err = s.list(ctx, userID, f)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetList(ctx, userID, ver, f, list); err != nil {
			s.log.Warn(ctx, "task cache write failed", "user_id", userID, "error", err)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

func (s *TaskService) list(ctx context.Context, userID string, f dom.TaskFilter) ([]dom.Task, error) {
	list, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if list == nil {
		list = []dom.Task{}
	}
	return list, nil
}

func (s *TaskService) GetByID(ctx context.Context, userID, id string) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return dom.Task{}, mapRepoErr("get task", err)
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (dom.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return dom.Task{}, ErrTitleRequired
	}
	priority, ok := dom.ParsePriority(in.Priority)
	if !ok {
		return dom.Task{}, ErrInvalidPriority
	}

	now := s.now().UTC()
	t, err := s.repo.Create(ctx, dom.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		DueDate:     in.DueDate,
		Completed:   false,
		Category:    strings.TrimSpace(in.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return dom.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Update merges the allow-listed fields of patch over the caller's task.
func (s *TaskService) Update(ctx context.Context, userID, id string, patch dom.TaskPatch) (dom.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return dom.Task{}, ErrTitleRequired
	}
	if patch.Priority != nil {
		p, ok := dom.ParsePriority(string(*patch.Priority))
		if !ok || *patch.Priority == "" {
			return dom.Task{}, ErrInvalidPriority
		}
		patch.Priority = &p
	}

	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return dom.Task{}, mapRepoErr("get task", err)
	}
	merged := patch.Apply(existing)
	merged.UpdatedAt = s.now().UTC()

	t, err := s.repo.Update(ctx, merged)
	if err != nil {
		return dom.Task{}, mapRepoErr("update task", err)
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return mapRepoErr("delete task", err)
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *TaskService) invalidateCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.log.Warn(ctx, "task cache invalidation failed", "user_id", userID, "error", err)
	}
}

func mapRepoErr(op string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
