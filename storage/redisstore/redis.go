// Package redisstore implements the shared stores on top of Redis: the schedule cache, the bell-signal hash
// and the cross-process change notifier.
package redisstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/timeac/core"
)

// Open connects to the configured Redis server.
func Open(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return rdb, nil
}

func key(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + ":" + name
}
