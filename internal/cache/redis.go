package cache

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

// ConnSource hands out Redis connections; *redis.Pool satisfies it
type ConnSource interface {
	GetContext(ctx context.Context) (redis.Conn, error)
}

// Redis is a Store shared between processes
type Redis struct {
	conns ConnSource
}

// NewRedis wraps a connection source
func NewRedis(conns ConnSource) *Redis {
	return &Redis{conns: conns}
}

// NewPool dials rawURL (redis://host:port/db) lazily and checks the server
// with a PING before returning
func NewPool(rawURL string) (*redis.Pool, error) {
	pool := &redis.Pool{
		MaxIdle:     16,
		MaxActive:   64,
		Wait:        true,
		IdleTimeout: 5 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(rawURL,
				redis.DialConnectTimeout(5*time.Second),
				redis.DialReadTimeout(3*time.Second),
				redis.DialWriteTimeout(3*time.Second),
			)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	conn := pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return pool, nil
}

func (r *Redis) conn(ctx context.Context) (redis.Conn, error) {
	c, err := r.conns.GetContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get redis connection")
	}
	return c, nil
}

// Get fetches key. A nil reply is a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return nil, false, err
	}
	defer c.Close()

	data, err := redis.Bytes(c.Do("GET", key))
	if err == redis.ErrNil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis GET %s", key)
	}
	return data, true, nil
}

// Set writes key with a millisecond expiry when ttl > 0
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if ttl > 0 {
		// PX rejects 0, so sub-millisecond lifetimes round up
		ms := ttl.Milliseconds()
		if ms < 1 {
			ms = 1
		}
		_, err = c.Do("SET", key, value, "PX", ms)
	} else {
		_, err = c.Do("SET", key, value)
	}
	return errors.Wrapf(err, "redis SET %s", key)
}

// Ping checks the server
func (r *Redis) Ping(ctx context.Context) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	_, err = c.Do("PING")
	return errors.Wrap(err, "redis PING")
}
