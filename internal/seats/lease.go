package seats

import (
	"context"
	"fmt"
	"time"

	"ticketcore/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

// Lease makes one process the single writer of a session
type Lease interface {
	Acquire(ctx context.Context, sessionID string) error
	Renew(ctx context.Context, sessionID string) error
	Release(ctx context.Context, sessionID string) error
}

// LocalLease is used when the service runs as a single instance
type LocalLease struct{}

func (LocalLease) Acquire(context.Context, string) error { return nil }
func (LocalLease) Renew(context.Context, string) error   { return nil }
func (LocalLease) Release(context.Context, string) error { return nil }

// Acquire succeeds when the key is free or already ours
var luaLeaseAcquire = redis.NewScript(`
-- KEYS[1] = lease key
-- ARGV[1] = owner
-- ARGV[2] = ttl_ms
local current = redis.call("GET", KEYS[1])
if not current then
    redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
    return 1
end
if current == ARGV[1] then
    redis.call("PEXPIRE", KEYS[1], ARGV[2])
    return 1
end
return 0
`)

var luaLeaseRenew = redis.NewScript(`
-- KEYS[1] = lease key
-- ARGV[1] = owner
-- ARGV[2] = ttl_ms
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

var luaLeaseRelease = redis.NewScript(`
-- KEYS[1] = lease key
-- ARGV[1] = owner
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease stores one key per session whose value is the owning instance id
type RedisLease struct {
	redis *redis.Client
	owner string
	ttl   time.Duration
}

func NewRedisLease(client *redis.Client, owner string, ttl time.Duration) *RedisLease {
	return &RedisLease{redis: client, owner: owner, ttl: ttl}
}

// Preload loads the lease scripts so later calls go through EVALSHA
func (r *RedisLease) Preload(ctx context.Context) error {
	for _, script := range []*redis.Script{luaLeaseAcquire, luaLeaseRenew, luaLeaseRelease} {
		if err := script.Load(ctx, r.redis).Err(); err != nil {
			return fmt.Errorf("failed to load lease script: %w", err)
		}
	}
	return nil
}

func (r *RedisLease) Acquire(ctx context.Context, sessionID string) error {
	ok, err := r.run(ctx, luaLeaseAcquire, sessionID, r.ttl.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to acquire session lease: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionOwnedElsewhere, sessionID)
	}
	return nil
}

func (r *RedisLease) Renew(ctx context.Context, sessionID string) error {
	ok, err := r.run(ctx, luaLeaseRenew, sessionID, r.ttl.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to renew session lease: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionOwnedElsewhere, sessionID)
	}
	return nil
}

func (r *RedisLease) Release(ctx context.Context, sessionID string) error {
	if _, err := r.run(ctx, luaLeaseRelease, sessionID); err != nil {
		return fmt.Errorf("failed to release session lease: %w", err)
	}
	return nil
}

func (r *RedisLease) run(ctx context.Context, script *redis.Script, sessionID string, args ...interface{}) (bool, error) {
	argv := append([]interface{}{r.owner}, args...)
	n, err := script.Run(ctx, r.redis, []string{constants.BuildSessionLeaseKey(sessionID)}, argv...).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
