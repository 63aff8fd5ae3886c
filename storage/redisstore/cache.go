package redisstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/timeac/core/schedule"
)

type scheduleCache struct {
	rdb *redis.Client
	key string
}

var _ schedule.Cache = (*scheduleCache)(nil)

func NewScheduleCache(rdb *redis.Client, prefix string) *scheduleCache {
	return &scheduleCache{rdb: rdb, key: key(prefix, "schedules")}
}

func (c *scheduleCache) LoadSchedules(ctx context.Context) ([]schedule.Schedule, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, schedule.ErrNotFound
		}
		return nil, errors.Wrap(err, "reading cached schedules")
	}
	var schedules []schedule.Schedule
	if err = json.Unmarshal(data, &schedules); err != nil {
		return nil, errors.Wrap(err, "decoding cached schedules")
	}
	return schedules, nil
}

func (c *scheduleCache) StoreSchedules(ctx context.Context, schedules []schedule.Schedule) error {
	data, err := json.Marshal(schedules)
	if err != nil {
		return errors.Wrap(err, "encoding schedules")
	}
	return errors.Wrap(c.rdb.Set(ctx, c.key, data, 0).Err(), "caching schedules")
}
