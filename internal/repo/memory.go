package repo

import (
	"context"
	"sync"

	dom "github.com/hirmezb/tasktracker/internal/domain"
	"github.com/hirmezb/tasktracker/internal/utils"
)

// MemoryTaskRepo keeps tasks in process memory. Used with STORE_DRIVER=memory and in tests.
type MemoryTaskRepo struct {
	mu    sync.RWMutex
	tasks map[string]dom.Task
}

func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{tasks: make(map[string]dom.Task)}
}

func (r *MemoryTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; ok {
		return dom.Task{}, ErrDuplicate
	}
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryTaskRepo) GetByID(_ context.Context, userID, id string) (dom.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return dom.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryTaskRepo) List(_ context.Context, userID string, f dom.TaskFilter) ([]dom.Task, error) {
	r.mu.RLock()
	list := []dom.Task{}
	for _, t := range r.tasks {
		if t.UserID == userID && f.Matches(t) {
			list = append(list, t)
		}
	}
	r.mu.RUnlock()
	dom.SortByDueDate(list)
	return list, nil
}

func (r *MemoryTaskRepo) Update(_ context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return dom.Task{}, ErrNotFound
	}
	t.CreatedAt = cur.CreatedAt
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryTaskRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

// MemoryUserRepo keeps users in process memory, keyed by normalized email.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]dom.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byEmail: make(map[string]dom.User)}
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[utils.NormalizeEmail(email)]
	if !ok {
		return dom.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepo) Create(_ context.Context, u dom.User) (dom.User, error) {
	u.Email = utils.NormalizeEmail(u.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return dom.User{}, ErrDuplicate
	}
	r.byEmail[u.Email] = u
	return u, nil
}
