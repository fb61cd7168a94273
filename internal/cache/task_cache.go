package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	dom "github.com/hirmezb/tasktracker/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyListPrefix    = "task:list:"
	keyVersionPrefix = "task:ver:"
)

// TaskCache caches per-user task list results in Redis.
//
// Entries are keyed by a per-user version. A write bumps the version, so a
// list read from the store before the write can only land under a key that
// is never read again.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// Version returns the current list version of userID. Callers read it
// before loading from the store and pass it to SetList.
func (c *TaskCache) Version(ctx context.Context, userID string) (int64, error) {
	v, err := c.rdb.Get(ctx, keyVersionPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// GetList returns the cached list for userID and f at version ver, or nil on a miss.
func (c *TaskCache) GetList(ctx context.Context, userID string, ver int64, f dom.TaskFilter) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, listKey(userID, ver, f)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Task{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list in cache under version ver.
func (c *TaskCache) SetList(ctx context.Context, userID string, ver int64, f dom.TaskFilter, list []dom.Task) error {
	if list == nil {
		list = []dom.Task{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID, ver, f), b, c.ttl).Err()
}

// InvalidateUser bumps the list version of userID and drops its cached lists.
func (c *TaskCache) InvalidateUser(ctx context.Context, userID string) error {
	if err := c.rdb.Incr(ctx, keyVersionPrefix+userID).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, keyListPrefix+userID+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func listKey(userID string, ver int64, f dom.TaskFilter) string {
	return keyListPrefix + userID + ":" + strconv.FormatInt(ver, 10) + ":" + f.Key()
}
