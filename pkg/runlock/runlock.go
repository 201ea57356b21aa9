// Package runlock provides a Redis-backed distributed lock enforcing
// the single-writer-per-timetable invariant across API replicas. An
// in-process guard alone (a plain map+mutex) only protects one
// process; this promotes that guard to a cluster-safe one the way
// pkg/cache/redis.go's client is already wired for cross-replica
// state, using the standard SET NX PX pattern.
package runlock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apierrors "github.com/campusforge/timetable-engine/pkg/errors"
)

const keyPrefix = "timetable:genlock:"

// Locker acquires per-timetable generation locks. Defined as an
// interface, like this package's collaborators elsewhere in the
// service layer, so callers can substitute a fake in tests without a
// live Redis instance.
type Locker interface {
	Acquire(ctx context.Context, timetableID string) (Handle, error)
}

// Handle is a held lock; call Release when the run finishes.
type Handle interface {
	Release(ctx context.Context) error
}

// redisLocker is the Redis-backed Locker implementation.
type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a Redis-backed Locker. ttl bounds how long a lock is
// held before it expires on its own, guarding against a crashed holder
// leaving a timetable permanently locked.
func New(client *redis.Client, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisLocker{client: client, ttl: ttl}
}

type redisHandle struct {
	client *redis.Client
	key    string
	token  string
}

// Acquire attempts to take the lock for timetableID, returning
// ErrAlreadyRunning if another run already holds it.
func (l *redisLocker) Acquire(ctx context.Context, timetableID string) (Handle, error) {
	key := keyPrefix + timetableID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, apierrors.Wrap(err, apierrors.ErrInternal.Code, apierrors.ErrInternal.Status, "failed to acquire generation lock")
	}
	if !ok {
		return nil, apierrors.ErrAlreadyRunning
	}
	return &redisHandle{client: l.client, key: key, token: token}, nil
}

// releaseScript only deletes the key if it still holds this handle's
// token, so a handle can never release a lock some other run has since
// acquired after this one's TTL expired.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Release drops the lock if this handle still owns it.
func (h *redisHandle) Release(ctx context.Context) error {
	if h == nil {
		return nil
	}
	err := h.client.Eval(ctx, releaseScript, []string{h.key}, h.token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return apierrors.Wrap(err, apierrors.ErrInternal.Code, apierrors.ErrInternal.Status, "failed to release generation lock")
	}
	return nil
}
