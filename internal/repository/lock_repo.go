package repository

import (
	"context"
	"time"
)

// LockRepository serialises writers of the URL store across processes.
type LockRepository interface {
	// Acquire takes the named lock for at most ttl. It returns ErrLockHeld
	// when another holder owns it. The returned func releases the lock.
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(ctx context.Context) error, err error)
}
