// Package redisstore keeps each session as a JSON document under a per-user,
// per-day key, with a sorted set of the user's days as the list index.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

const keyPrefix = "liftlog:"

// SessionKey is the document key for one user and day.
func SessionKey(user workout.UserID, day workout.Day) string {
	return keyPrefix + "session:" + string(user) + ":" + day.String()
}

// DaysKey is the sorted set indexing a user's session days.
func DaysKey(user workout.UserID) string {
	return keyPrefix + "days:" + string(user)
}

// dayScore orders days numerically as yyyymmdd.
func dayScore(d workout.Day) float64 {
	return float64(d.Year*10000 + int(d.Month)*100 + d.Day)
}

// Store is a storage.Store on Redis.
type Store struct {
	rdb *redis.Client
}

// New wraps an existing client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Dial connects to addr and pings it.
func Dial(ctx context.Context, addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return New(rdb), nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) List(ctx context.Context, user workout.UserID) ([]workout.Session, error) {
	days, err := s.rdb.ZRange(ctx, DaysKey(user), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing days of %s: %w", user, err)
	}
	result := []workout.Session{}
	if len(days) == 0 {
		return result, nil
	}

	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = keyPrefix + "session:" + string(user) + ":" + d
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("loading sessions of %s: %w", user, err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a document.
			continue
		}
		sess, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", keys[i], err)
		}
		result = append(result, sess)
	}
	return result, nil
}

func (s *Store) GetByDay(ctx context.Context, user workout.UserID, day workout.Day) (workout.Session, error) {
	raw, err := s.rdb.Get(ctx, SessionKey(user, day)).Result()
	if errors.Is(err, redis.Nil) {
		return workout.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return workout.Session{}, fmt.Errorf("getting session %s: %w", workout.DayKey(user, day), err)
	}
	return decode(raw)
}

func (s *Store) Upsert(ctx context.Context, sess workout.Session) (workout.Session, error) {
	sess, err := storage.Prepare(sess)
	if err != nil {
		return workout.Session{}, err
	}

	existing, err := s.GetByDay(ctx, sess.UserID, sess.Date)
	switch {
	case err == nil:
		sess.ID = existing.ID
	case !errors.Is(err, storage.ErrNotFound):
		return workout.Session{}, err
	}

	doc, err := json.Marshal(sess)
	if err != nil {
		return workout.Session{}, fmt.Errorf("encoding session: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, SessionKey(sess.UserID, sess.Date), doc, 0)
		pipe.ZAdd(ctx, DaysKey(sess.UserID), &redis.Z{Score: dayScore(sess.Date), Member: sess.Date.String()})
		return nil
	})
	if err != nil {
		return workout.Session{}, fmt.Errorf("writing session %s: %w", sess.Key(), err)
	}
	return sess, nil
}

func decode(raw string) (workout.Session, error) {
	var sess workout.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return workout.Session{}, err
	}
	return sess, nil
}
