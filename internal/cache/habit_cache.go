package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "Tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyListPrefix     = "habit:list:"
	keyProgressPrefix = "habit:progress:"
)

// HabitCache caches per-user habit lists and per-habit progress in Redis.
type HabitCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewHabitCache returns a new HabitCache.
func NewHabitCache(rdb *redis.Client, ttl time.Duration) *HabitCache {
	return &HabitCache{rdb: rdb, ttl: ttl}
}

func listKey(userID uuid.UUID) string { return keyListPrefix + userID.String() }

func progressKey(habitID uuid.UUID) string { return keyProgressPrefix + habitID.String() }

// GetList returns the cached habit list for a user, or nil on miss.
func (c *HabitCache) GetList(ctx context.Context, userID uuid.UUID) ([]dom.Habit, error) {
	b, err := c.rdb.Get(ctx, listKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Habit
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores a user's habit list.
func (c *HabitCache) SetList(ctx context.Context, userID uuid.UUID, list []dom.Habit) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID), b, c.ttl).Err()
}

// GetProgress returns cached progress for a habit, or nil on miss.
func (c *HabitCache) GetProgress(ctx context.Context, habitID uuid.UUID) (*dom.Progress, error) {
	b, err := c.rdb.Get(ctx, progressKey(habitID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p dom.Progress
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetProgress stores progress for a habit.
func (c *HabitCache) SetProgress(ctx context.Context, p dom.Progress) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, progressKey(p.HabitID), b, c.ttl).Err()
}

// InvalidateList drops a user's cached habit list (on any habit write).
func (c *HabitCache) InvalidateList(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, listKey(userID)).Err()
}

// InvalidateProgress drops a habit's cached progress (on log upsert or delete).
func (c *HabitCache) InvalidateProgress(ctx context.Context, habitID uuid.UUID) error {
	return c.rdb.Del(ctx, progressKey(habitID)).Err()
}
