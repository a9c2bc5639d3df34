package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// GetJSON decodes a cached value into dst. It reports false on a miss or on
// any cache/decoding failure, so callers fall through to the database.
func GetJSON(ctx context.Context, c Cache, log *logrus.Logger, key string, dst interface{}) bool {
	raw, err := c.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.WithError(err).WithField("key", key).Warn("cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache decode failed")
		return false
	}
	return true
}

func SetJSON(ctx context.Context, c Cache, log *logrus.Logger, key string, v interface{}, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache encode failed")
		return
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

// Invalidate deletes keys and only logs failures; a stale entry expires by TTL.
func Invalidate(ctx context.Context, c Cache, log *logrus.Logger, keys ...string) {
	if err := c.Del(ctx, keys...); err != nil {
		log.WithError(err).WithField("keys", keys).Warn("cache invalidation failed")
	}
}
