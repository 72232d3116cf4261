package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard records consumed single-use signatures. ConsumeOnce returns true
// the first time a signature is seen and false on every repeat within the
// TTL. An error means the backing store is unreachable; callers decide how
// to degrade (this service accepts the token and logs a warning).
type Guard interface {
	ConsumeOnce(ctx context.Context, sig string, ttl time.Duration) (bool, error)
}

const keyPrefix = "maglink:used:"

// RedisGuard implements Guard on a redis SETNX with per-key expiry. The
// check-and-set is a single redis command, so concurrent redemptions of the
// same signature cannot both observe "absent".
type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) ConsumeOnce(ctx context.Context, sig string, ttl time.Duration) (bool, error) {
	if ttl < time.Second {
		ttl = time.Second
	}

	fresh, err := g.client.SetNX(ctx, keyPrefix+sig, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay store: %w", err)
	}
	return fresh, nil
}

// Ping reports whether the backing store is reachable.
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}
