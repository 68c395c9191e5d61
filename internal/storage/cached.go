package storage

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/coocood/freecache"

	"github.com/claude/liftlog/internal/workout"
)

// listCacheExpire is the lifetime of a cached List result, in seconds.
const listCacheExpire = 300

// Cached keeps each user's List result in a freecache arena in front of
// another Store. Upsert invalidates the writer's entry.
type Cached struct {
	next  Store
	cache *freecache.Cache
	log   *slog.Logger
}

// NewCached wraps next with a cache of sizeMB megabytes.
func NewCached(next Store, sizeMB int, log *slog.Logger) *Cached {
	return &Cached{
		next:  next,
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		log:   log,
	}
}

func listKey(user workout.UserID) []byte {
	return []byte("list::" + string(user))
}

func (c *Cached) List(ctx context.Context, user workout.UserID) ([]workout.Session, error) {
	key := listKey(user)
	if raw, err := c.cache.Get(key); err == nil {
		var sessions []workout.Session
		decodeErr := json.Unmarshal(raw, &sessions)
		if decodeErr == nil {
			return sessions, nil
		}
		c.log.Warn("dropping unreadable cache entry", "user", user, "error", decodeErr)
		c.cache.Del(key)
	}

	sessions, err := c.next.List(ctx, user)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(sessions)
	if err != nil {
		c.log.Warn("encoding sessions for cache", "user", user, "error", err)
		return sessions, nil
	}
	if err := c.cache.Set(key, raw, listCacheExpire); err != nil {
		c.log.Debug("session list not cached", "user", user, "error", err)
	}
	return sessions, nil
}

func (c *Cached) Upsert(ctx context.Context, s workout.Session) (workout.Session, error) {
	stored, err := c.next.Upsert(ctx, s)
	c.cache.Del(listKey(s.UserID))
	return stored, err
}

func (c *Cached) GetByDay(ctx context.Context, user workout.UserID, day workout.Day) (workout.Session, error) {
	return c.next.GetByDay(ctx, user, day)
}

func (c *Cached) Close() error {
	return c.next.Close()
}

// Stats reports cache hit and miss counts since creation.
func (c *Cached) Stats() (hits, misses int64) {
	return c.cache.HitCount(), c.cache.MissCount()
}
