package redisstore

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/timeac/core/bell"
)

// hash fields read by the bell controller
const (
	fieldCurrentAlias    = "currentAlias"
	fieldManualRing      = "manualRing"
	fieldIsRinging       = "isRinging"
	fieldAutoRingEnabled = "autoRingEnabled"
	fieldIsSilenced      = "isSilenced"
)

type bellStore struct {
	rdb *redis.Client
	key string
}

var _ bell.Store = (*bellStore)(nil)

func NewBellStore(rdb *redis.Client, prefix string) *bellStore {
	return &bellStore{rdb: rdb, key: key(prefix, "bell")}
}

func (s *bellStore) CurrentAlias(ctx context.Context) (string, error) {
	alias, err := s.rdb.HGet(ctx, s.key, fieldCurrentAlias).Result()
	if err != nil {
		if err == redis.Nil {
			return "", bell.ErrNotFound
		}
		return "", errors.Wrap(err, "reading current alias")
	}
	return alias, nil
}

func (s *bellStore) SetCurrentAlias(ctx context.Context, alias string) error {
	return s.rdb.HSet(ctx, s.key, fieldCurrentAlias, alias).Err()
}

func (s *bellStore) GetControls(ctx context.Context) (bell.Controls, error) {
	values, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return bell.Controls{}, errors.Wrap(err, "reading bell controls")
	}

	c := bell.DefaultControls()
	if v, ok := values[fieldManualRing]; ok {
		c.ManualRing, _ = strconv.ParseInt(v, 10, 64)
	}
	c.IsRinging = parseBool(values, fieldIsRinging, c.IsRinging)
	c.AutoRingEnabled = parseBool(values, fieldAutoRingEnabled, c.AutoRingEnabled)
	c.IsSilenced = parseBool(values, fieldIsSilenced, c.IsSilenced)
	return c, nil
}

func (s *bellStore) UpdateControls(ctx context.Context, patch bell.ControlsPatch) error {
	values := make(map[string]interface{}, 2)
	if patch.AutoRingEnabled != nil {
		values[fieldAutoRingEnabled] = strconv.FormatBool(*patch.AutoRingEnabled)
	}
	if patch.IsSilenced != nil {
		values[fieldIsSilenced] = strconv.FormatBool(*patch.IsSilenced)
	}
	if len(values) == 0 {
		return nil
	}
	return s.rdb.HSet(ctx, s.key, values).Err()
}

func (s *bellStore) IncrManualRing(ctx context.Context) (int64, error) {
	return s.rdb.HIncrBy(ctx, s.key, fieldManualRing, 1).Result()
}

func (s *bellStore) SetRinging(ctx context.Context, ringing bool) error {
	return s.rdb.HSet(ctx, s.key, fieldIsRinging, strconv.FormatBool(ringing)).Err()
}

func parseBool(values map[string]string, field string, fallback bool) bool {
	v, ok := values[field]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
