package redisx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock could not be acquired within the
// configured wait.
var ErrLockTimeout = errors.New("redisx: timed out waiting for resource lock")

const (
	defaultTTL   = 10 * time.Second
	defaultWait  = 5 * time.Second
	retryBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ResourceLock serializes work per resource across processes sharing one
// Redis. It satisfies application.ResourceLocker.
type ResourceLock struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	logger *slog.Logger
}

// LockOption configures a ResourceLock.
type LockOption func(*ResourceLock)

// WithTTL sets how long a held lock survives if its holder disappears.
func WithTTL(ttl time.Duration) LockOption {
	return func(l *ResourceLock) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithWait bounds how long LockResource keeps retrying.
func WithWait(wait time.Duration) LockOption {
	return func(l *ResourceLock) {
		if wait > 0 {
			l.wait = wait
		}
	}
}

// WithLogger sets the logger used for release failures.
func WithLogger(logger *slog.Logger) LockOption {
	return func(l *ResourceLock) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewResourceLock builds a lock backed by rdb.
func NewResourceLock(rdb redis.UniversalClient, opts ...LockOption) *ResourceLock {
	l := &ResourceLock{
		rdb:    rdb,
		ttl:    defaultTTL,
		wait:   defaultWait,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LockResource acquires the lock for resourceID, retrying until it is free,
// the wait elapses (ErrLockTimeout) or ctx is done.
func (l *ResourceLock) LockResource(ctx context.Context, resourceID string) (func(), error) {
	key := ResourceLockKey(resourceID)
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(retryBackoff)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return l.unlockFunc(key, token), nil
		}

		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, resourceID)
		}
	}
}

func (l *ResourceLock) unlockFunc(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
				l.logger.Warn("failed to release resource lock", "key", key, "error", err)
			}
		})
	}
}
