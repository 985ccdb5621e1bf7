// Package cache wraps Redis behind a best-effort TTL key-value store. The
// cache is never authoritative: every failure path degrades to a miss so a
// Redis outage can slow the API down but never change an answer.
package cache

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// Store is the key-value surface used by the eligibility cache and the
// rate limiter. TryGet and TrySet deliberately return no error.
type Store interface {
	TryGet(key string) (string, bool)
	TrySet(key, value string, ttl time.Duration)
	Delete(key string) error
	IncrementWindow(key string, ttl time.Duration)
	GetCount(key string) int
}

type redisStore struct {
	pool *redis.Pool
}

// NewPool creates a redigo connection pool for the given redis URL
func NewPool(redisURL string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     5,
		MaxActive:   20,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(redisURL)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// NewStore wraps a redigo pool in a Store
func NewStore(pool *redis.Pool) Store {
	return &redisStore{pool: pool}
}

func (s *redisStore) TryGet(key string) (string, bool) {
	conn := s.pool.Get()
	defer conn.Close()

	value, err := redis.String(conn.Do("GET", key))
	if err == redis.ErrNil {
		return "", false
	}
	if err != nil {
		zap.S().Warnw("cache read failed, treating as miss", "key", key, "error", err)
		return "", false
	}
	return value, true
}

func (s *redisStore) TrySet(key, value string, ttl time.Duration) {
	conn := s.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("SETEX", key, int(ttl.Seconds()), value); err != nil {
		zap.S().Warnw("cache write failed, ignoring", "key", key, "error", err)
	}
}

func (s *redisStore) Delete(key string) error {
	conn := s.pool.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", key)
	return err
}

// IncrementWindow bumps a counter, starting its TTL only on the first
// increment. The window is fixed at creation, not sliding.
func (s *redisStore) IncrementWindow(key string, ttl time.Duration) {
	conn := s.pool.Get()
	defer conn.Close()

	count, err := redis.Int64(conn.Do("INCR", key))
	if err != nil {
		zap.S().Warnw("counter increment failed, ignoring", "key", key, "error", err)
		return
	}
	if count == 1 {
		if _, err := conn.Do("EXPIRE", key, int(ttl.Seconds())); err != nil {
			zap.S().Warnw("counter expire failed, ignoring", "key", key, "error", err)
		}
	}
}

func (s *redisStore) GetCount(key string) int {
	conn := s.pool.Get()
	defer conn.Close()

	count, err := redis.Int(conn.Do("GET", key))
	if err == redis.ErrNil {
		return 0
	}
	if err != nil {
		zap.S().Warnw("counter read failed, treating as zero", "key", key, "error", err)
		return 0
	}
	return count
}
