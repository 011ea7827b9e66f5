package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskdeck/internal/models"
)

// cachedTaskRepository wraps a TaskRepository with Redis-backed caching of
// the List path. Writes bump a per-user version key instead of scanning for
// page keys, so eviction is a single INCR and stale pages just age out.
type cachedTaskRepository struct {
	TaskRepository
	redis *redis.Client
	ttl   time.Duration
}

type cachedPage struct {
	Tasks []models.Task `json:"tasks"`
	Total int           `json:"total"`
}

// NewCachedTaskRepository wraps base with a Redis cache. A nil client
// returns base unchanged.
func NewCachedTaskRepository(base TaskRepository, client *redis.Client, ttl time.Duration) TaskRepository {
	if base == nil {
		panic("repositories.NewCachedTaskRepository: base repository is nil")
	}
	if client == nil {
		return base
	}
	if ttl < 0 {
		ttl = 0
	}
	return &cachedTaskRepository{TaskRepository: base, redis: client, ttl: ttl}
}

func (c *cachedTaskRepository) List(ctx context.Context, userID int64, q ListQuery) ([]models.Task, int, error) {
	key := c.pageKey(ctx, userID, q)
	if key != "" {
		if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
			var page cachedPage
			if json.Unmarshal(data, &page) == nil {
				return page.Tasks, page.Total, nil
			}
			// Corrupted entry: drop it and fall through to the repository.
			_ = c.redis.Del(ctx, key).Err()
		}
	}

	tasks, total, err := c.TaskRepository.List(ctx, userID, q)
	if err != nil {
		return nil, 0, err
	}
	if key != "" && c.ttl > 0 {
		if data, err := json.Marshal(cachedPage{Tasks: tasks, Total: total}); err == nil {
			_ = c.redis.Set(ctx, key, data, c.ttl).Err()
		}
	}
	return tasks, total, nil
}

func (c *cachedTaskRepository) Store(ctx context.Context, task *models.Task) error {
	if err := c.TaskRepository.Store(ctx, task); err != nil {
		return err
	}
	c.evict(ctx, task.UserID)
	return nil
}

func (c *cachedTaskRepository) Reorder(ctx context.Context, userID int64, orderedIDs []int64, offset int) error {
	if err := c.TaskRepository.Reorder(ctx, userID, orderedIDs, offset); err != nil {
		return err
	}
	c.evict(ctx, userID)
	return nil
}

func (c *cachedTaskRepository) Update(ctx context.Context, task *models.Task) (bool, error) {
	found, err := c.TaskRepository.Update(ctx, task)
	if err == nil && found {
		c.evict(ctx, task.UserID)
	}
	return found, err
}

func (c *cachedTaskRepository) UpdateStatus(ctx context.Context, userID, id int64, to models.TaskStatus) (bool, error) {
	found, err := c.TaskRepository.UpdateStatus(ctx, userID, id, to)
	if err == nil && found {
		c.evict(ctx, userID)
	}
	return found, err
}

func (c *cachedTaskRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	found, err := c.TaskRepository.Delete(ctx, userID, id)
	if err == nil && found {
		c.evict(ctx, userID)
	}
	return found, err
}

// pageKey returns the cache key for this user+query under the user's current
// cache version, or "" when redis is unreachable.
func (c *cachedTaskRepository) pageKey(ctx context.Context, userID int64, q ListQuery) string {
	ver, err := c.redis.Get(ctx, versionKey(userID)).Int64()
	if err != nil && err != redis.Nil {
		return ""
	}
	return fmt.Sprintf("tasks:%d:v%d:%s|%s|%s|%d|%d",
		userID, ver, q.Status, q.SortBy, q.Search, q.Page, q.PageSize)
}

func (c *cachedTaskRepository) evict(ctx context.Context, userID int64) {
	_ = c.redis.Incr(ctx, versionKey(userID)).Err()
}

func versionKey(userID int64) string {
	return fmt.Sprintf("tasksver:%d", userID)
}
