package lock

import (
	"context"
	"time"

	"notification-dispatch/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only when it still holds our token,
// so an expired-and-reacquired lock is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisProvider implements Provider with SET NX + TTL. The TTL is a
// backstop against a holder crashing between acquire and release; it
// should comfortably exceed one dispatch batch.
type RedisProvider struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProvider(client *redis.Client, ttl time.Duration) *RedisProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisProvider{client: client, ttl: ttl}
}

func (p *RedisProvider) WithLock(ctx context.Context, name string, fn func() error) (bool, error) {
	key := Key(name)
	token := uuid.NewString()

	ok, err := p.client.SetNX(ctx, key, token, p.ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	defer func() {
		released, err := releaseScript.Run(context.Background(), p.client, []string{key}, token).Int()
		if err != nil {
			logger.Errorf("lock: release %s failed error=%v", key, err)
		} else if released == 0 {
			logger.Warnf("lock: release %s skipped, token expired or replaced", key)
		}
	}()

	return true, fn()
}
