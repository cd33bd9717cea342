package lease

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease key only when the stored owner matches,
// so a stale releaser cannot drop a lease re-acquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisManager struct {
	client redis.Cmdable
	prefix string
}

func NewRedisManager(client redis.Cmdable, prefix string) *RedisManager {
	normalized := strings.TrimSpace(prefix)
	if normalized == "" {
		normalized = "orderflow:lease"
	}
	return &RedisManager{client: client, prefix: normalized}
}

func (m *RedisManager) Acquire(ctx context.Context, resource, owner string, ttl time.Duration) (bool, error) {
	resource = strings.TrimSpace(resource)
	owner = strings.TrimSpace(owner)
	if resource == "" {
		return false, errors.New("resource is required")
	}
	if owner == "" {
		return false, errors.New("owner is required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	acquired, err := m.client.SetNX(ctx, m.key(resource), owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lease setnx: %w", err)
	}
	return acquired, nil
}

func (m *RedisManager) Release(ctx context.Context, resource, owner string) error {
	resource = strings.TrimSpace(resource)
	owner = strings.TrimSpace(owner)
	if resource == "" || owner == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, m.client, []string{m.key(resource)}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("lease release: %w", err)
	}
	return nil
}

func (m *RedisManager) key(resource string) string {
	return m.prefix + ":" + resource
}
