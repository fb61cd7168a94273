package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hirmezb/tasktracker/internal/cache"
	dom "github.com/hirmezb/tasktracker/internal/domain"
	"github.com/hirmezb/tasktracker/internal/logging"
	"github.com/hirmezb/tasktracker/internal/repo"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "11111111-1111-1111-1111-111111111111"
	bob   = "22222222-2222-2222-2222-222222222222"
)

func newTaskService(t *testing.T) *TaskService {
	t.Helper()
	return NewTaskService(repo.NewMemoryTaskRepo(), nil, logging.Nop())
}

func ptr[T any](v T) *T { return &v }

func TestCreate_Defaults(t *testing.T) {
	s := newTaskService(t)

	got, err := s.Create(context.Background(), alice, CreateTaskInput{Title: "Buy milk"})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, alice, got.UserID)
	assert.Equal(t, "Buy milk", got.Title)
	assert.False(t, got.Completed)
	assert.Equal(t, dom.PriorityLow, got.Priority)
	assert.Nil(t, got.DueDate)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestCreate_Validation(t *testing.T) {
	s := newTaskService(t)
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := s.Create(ctx, alice, CreateTaskInput{Title: title})
		assert.ErrorIs(t, err, ErrTitleRequired, "title %q", title)
	}

	_, err := s.Create(ctx, alice, CreateTaskInput{Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidPriority)

	list, err := s.List(ctx, alice, dom.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "failed creates must not persist anything")
}

func TestList_FiltersAndOrder(t *testing.T) {
	s := newTaskService(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mustCreate := func(in CreateTaskInput) dom.Task {
		t.Helper()
		tk, err := s.Create(ctx, alice, in)
		require.NoError(t, err)
		return tk
	}
	undated := mustCreate(CreateTaskInput{Title: "someday", Category: "home"})
	late := mustCreate(CreateTaskInput{Title: "late", Priority: "high", DueDate: ptr(base.Add(72 * time.Hour)), Category: "work"})
	early := mustCreate(CreateTaskInput{Title: "early", Priority: "high", DueDate: ptr(base), Category: "home"})
	_, err := s.Update(ctx, alice, early.ID, dom.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)

	all, err := s.List(ctx, alice, dom.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{early.ID, late.ID, undated.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	done, err := s.List(ctx, alice, dom.TaskFilter{Completed: ptr(true)})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.True(t, done[0].Completed)

	open, err := s.List(ctx, alice, dom.TaskFilter{Completed: ptr(false)})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	high, err := s.List(ctx, alice, dom.TaskFilter{Priority: dom.PriorityHigh})
	require.NoError(t, err)
	assert.Len(t, high, 2)

	home, err := s.List(ctx, alice, dom.TaskFilter{Category: "home"})
	require.NoError(t, err)
	assert.Len(t, home, 2)

	none, err := s.List(ctx, alice, dom.TaskFilter{Category: "garden"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestOwnershipIsolation(t *testing.T) {
	s := newTaskService(t)
	ctx := context.Background()

	task, err := s.Create(ctx, alice, CreateTaskInput{Title: "private"})
	require.NoError(t, err)

	list, err := s.List(ctx, bob, dom.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.GetByID(ctx, bob, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update(ctx, bob, task.ID, dom.TaskPatch{Title: ptr("mine now")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, bob, task.ID), ErrNotFound)

	got, err := s.GetByID(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)
}

func TestUpdate_MergesOnlySuppliedFields(t *testing.T) {
	s := newTaskService(t)
	ctx := context.Background()
	due := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)

	task, err := s.Create(ctx, alice, CreateTaskInput{Title: "Buy milk", Description: "oat", DueDate: &due, Category: "home"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, alice, task.ID, dom.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)

	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "oat", updated.Description)
	assert.Equal(t, "home", updated.Category)
	assert.Equal(t, dom.PriorityLow, updated.Priority)
	assert.Equal(t, &due, updated.DueDate)
	assert.Equal(t, alice, updated.UserID)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)

	cleared, err := s.Update(ctx, alice, task.ID, dom.TaskPatch{DueDateSet: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
	assert.True(t, cleared.Completed)
}

func TestUpdate_Validation(t *testing.T) {
	s := newTaskService(t)
	ctx := context.Background()
	task, err := s.Create(ctx, alice, CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	_, err = s.Update(ctx, alice, task.ID, dom.TaskPatch{Title: ptr("  ")})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = s.Update(ctx, alice, task.ID, dom.TaskPatch{Priority: ptr(dom.Priority("urgent"))})
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = s.Update(ctx, alice, "does-not-exist", dom.TaskPatch{Completed: ptr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_IdempotentInEffect(t *testing.T) {
	s := newTaskService(t)
	ctx := context.Background()
	task, err := s.Create(ctx, alice, CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, alice, task.ID))
	assert.ErrorIs(t, s.Delete(ctx, alice, task.ID), ErrNotFound)
	_, err = s.GetByID(ctx, alice, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingTaskRepo struct {
	repo.TaskRepo
	err error
}

func (f failingTaskRepo) List(context.Context, string, dom.TaskFilter) ([]dom.Task, error) {
	return nil, f.err
}

func (f failingTaskRepo) Create(context.Context, dom.Task) (dom.Task, error) {
	return dom.Task{}, f.err
}

func (f failingTaskRepo) Delete(context.Context, string, string) error {
	return f.err
}

func TestStorageFailuresAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	s := NewTaskService(failingTaskRepo{err: boom}, nil, logging.Nop())
	ctx := context.Background()

	_, err := s.List(ctx, alice, dom.TaskFilter{})
	assert.ErrorIs(t, err, boom)

	_, err = s.Create(ctx, alice, CreateTaskInput{Title: "x"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = s.Delete(ctx, alice, "t1")
	assert.ErrorIs(t, err, boom)
}

type countingTaskRepo struct {
	*repo.MemoryTaskRepo
	lists int
}

func (c *countingTaskRepo) List(ctx context.Context, userID string, f dom.TaskFilter) ([]dom.Task, error) {
	c.lists++
	return c.MemoryTaskRepo.List(ctx, userID, f)
}

func TestList_CacheHitAndInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := &countingTaskRepo{MemoryTaskRepo: repo.NewMemoryTaskRepo()}
	s := NewTaskService(store, cache.NewTaskCache(rdb, time.Minute), logging.Nop())
	ctx := context.Background()

	_, err := s.Create(ctx, alice, CreateTaskInput{Title: "first"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		list, err := s.List(ctx, alice, dom.TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
	assert.Equal(t, 1, store.lists, "repeated lists should be served from cache")

	_, err = s.Create(ctx, alice, CreateTaskInput{Title: "second"})
	require.NoError(t, err)

	list, err := s.List(ctx, alice, dom.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2, "writes must invalidate the cached list")
	assert.Equal(t, 2, store.lists)

	other, err := s.List(ctx, bob, dom.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestList_CacheOutageFallsBackToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewTaskService(repo.NewMemoryTaskRepo(), cache.NewTaskCache(rdb, time.Minute), logging.Nop())
	ctx := context.Background()
	mr.Close()

	_, err := s.Create(ctx, alice, CreateTaskInput{Title: "still works"})
	require.NoError(t, err)

	list, err := s.List(ctx, alice, dom.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// pausingTaskRepo holds the first List call open until release is closed.
type pausingTaskRepo struct {
	*repo.MemoryTaskRepo
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newPausingTaskRepo() *pausingTaskRepo {
	r := &pausingTaskRepo{
		MemoryTaskRepo: repo.NewMemoryTaskRepo(),
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	r.armed.Store(true)
	return r
}

func (r *pausingTaskRepo) List(ctx context.Context, userID string, f dom.TaskFilter) ([]dom.Task, error) {
	if r.armed.CompareAndSwap(true, false) {
		list, err := r.MemoryTaskRepo.List(ctx, userID, f)
		close(r.entered)
		<-r.release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return list, err
	}
	return r.MemoryTaskRepo.List(ctx, userID, f)
}

func newCachedService(t *testing.T, store repo.TaskRepo) *TaskService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTaskService(store, cache.NewTaskCache(rdb, time.Minute), logging.Nop())
}

func TestList_WriteDuringStoreReadDoesNotLeaveStaleCache(t *testing.T) {
	store := newPausingTaskRepo()
	s := newCachedService(t, store)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.List(ctx, alice, dom.TaskFilter{})
		done <- err
	}()

	<-store.entered
	_, err := s.Create(ctx, alice, CreateTaskInput{Title: "new"})
	require.NoError(t, err)
	close(store.release)
	require.NoError(t, <-done)

	list, err := s.List(ctx, alice, dom.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].Title)
}

func TestList_SharedLoadIgnoresCallerCancellation(t *testing.T) {
	store := newPausingTaskRepo()
	s := newCachedService(t, store)

	_, err := s.Create(context.Background(), alice, CreateTaskInput{Title: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		list []dom.Task
		err  error
	}
	done := make(chan result, 1)
	go func() {
		list, err := s.List(ctx, alice, dom.TaskFilter{})
		done <- result{list, err}
	}()

	<-store.entered
	cancel()
	close(store.release)

	res := <-done
	require.NoError(t, res.err)
	assert.Len(t, res.list, 1)
}
