package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// HeightKey is where the chain follower publishes the current block height.
const HeightKey = "chain:height"

// RedisHeight reads the environment's block counter out of redis. A missing
// key reads as height 0 (chain not started), never as an error.
type RedisHeight struct {
	rdb *redis.Client
	key string
}

func NewRedisHeight(rdb *redis.Client) *RedisHeight {
	return &RedisHeight{rdb: rdb, key: HeightKey}
}

func (h *RedisHeight) Current(ctx context.Context) (uint64, error) {
	v, err := h.rdb.Get(ctx, h.key).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", h.key, err)
	}
	return v, nil
}
