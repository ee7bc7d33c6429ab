package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mgdrago/anitmated-to-do-list/domain"
)

// listCacheKey caches the unfiltered list only; filtered lists go straight
// to the backend.
const listCacheKey = "todos:list"

type backend interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Task, error)
	Create(ctx context.Context, in domain.TaskInput) (domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error)
	Reorder(ctx context.Context, ids []int64) error
	SoftDelete(ctx context.Context, id int64) error
	Purge(ctx context.Context) (int64, error)
}

// Cache wraps a task store with Redis-backed caching of the unfiltered
// list, the request the client issues on every render. Every mutation
// delegates to the backend and then evicts the cached list, so the cache
// never serves state a mutation has already replaced.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and
// TTL. A nil client or zero TTL disables caching while keeping the
// wrapper a straight passthrough.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) List(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	if !f.IsZero() {
		return c.base.List(ctx, f)
	}
	if tasks, ok := c.loadList(ctx); ok {
		return tasks, nil
	}
	tasks, err := c.base.List(ctx, f)
	if err != nil {
		return nil, err
	}
	c.storeList(ctx, tasks)
	return tasks, nil
}

func (c *Cache) Create(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	t, err := c.base.Create(ctx, in)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return t, nil
}

func (c *Cache) Get(ctx context.Context, id int64) (domain.Task, error) {
	return c.base.Get(ctx, id)
}

func (c *Cache) Update(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	t, err := c.base.Update(ctx, id, patch)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return t, nil
}

func (c *Cache) Reorder(ctx context.Context, ids []int64) error {
	if err := c.base.Reorder(ctx, ids); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) SoftDelete(ctx context.Context, id int64) error {
	if err := c.base.SoftDelete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) Purge(ctx context.Context) (int64, error) {
	n, err := c.base.Purge(ctx)
	if err != nil {
		return 0, err
	}
	c.evict(ctx)
	return n, nil
}

func (c *Cache) loadList(ctx context.Context) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, listCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, listCacheKey).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, listCacheKey).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) storeList(ctx context.Context, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, listCacheKey, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, listCacheKey).Result()
}
