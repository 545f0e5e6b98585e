package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/folio/internal/application/service"
)

const rateKeyPrefix = "rate:"

type redisRateCounter struct {
	rdb redis.Cmdable
}

func NewRedisRateCounter(rdb redis.Cmdable) service.RateCounter {
	return &redisRateCounter{rdb: rdb}
}

// Hit counts one request against key. INCR and EXPIRE NX run in one
// transaction, so a counter never exists without a TTL.
func (c *redisRateCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	key = rateKeyPrefix + key
	var incr *redis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
