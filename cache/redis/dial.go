package redis

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"

	"github.com/codingWhat/drills/conf"
)

const (
	DriverGoRedis = "goredis"
	DriverRedigo  = "redigo"
)

// Dial opens a client for c and pings it once.
func Dial(ctx context.Context, c conf.Redis) (Client, error) {
	var client Client
	switch c.Driver {
	case "", DriverGoRedis:
		client = NewGoRedisClient(goredis.NewClient(&goredis.Options{
			Addr:     c.Addr,
			Password: c.Password,
			DB:       c.DB,
			PoolSize: c.PoolSize,
		}))
	case DriverRedigo:
		client = NewRedigoClient(newPool(c))
	default:
		return nil, errors.Errorf("unknown redis driver %q", c.Driver)
	}

	if _, err := client.Do(ctx, "PING"); err != nil {
		_ = client.Close()
		return nil, errors.WithMessagef(err, "ping redis %s", c.Addr)
	}
	return client, nil
}

func newPool(c conf.Redis) *redis.Pool {
	maxActive := c.PoolSize
	if maxActive <= 0 {
		maxActive = 10
	}
	return &redis.Pool{
		MaxIdle:     3,
		MaxActive:   maxActive,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", c.Addr,
				redis.DialPassword(c.Password),
				redis.DialDatabase(c.DB),
			)
		},
		TestOnBorrow: func(conn redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := conn.Do("PING")
			return err
		},
	}
}
