package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/pkg/utils"
)

const lockKeyPrefix = "lock:"

// releaseScript deletes the lock only if it still holds our token, so an
// expired holder never releases a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockRepoImpl provides a concrete implementation for the LockRepository interface using Redis.
type LockRepoImpl struct {
	client *redis.Client
}

// NewLockRepo creates a new instance of LockRepoImpl.
func NewLockRepo(client *redis.Client) *LockRepoImpl {
	return &LockRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a lock name by hashing it.
func (r *LockRepoImpl) generateKey(name string) string {
	return fmt.Sprintf("%s%s", lockKeyPrefix, utils.HashURL(name))
}

// Acquire takes the lock with SET NX and an expiry.
func (r *LockRepoImpl) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	key := r.generateKey(name)

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrLockHeld, name)
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, r.client, []string{key}, token).Err()
	}
	return release, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
