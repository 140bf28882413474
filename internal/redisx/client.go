// Package redisx holds the Redis client and the cross-process resource lock.
package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// New returns a client for addr with short dial and IO timeouts.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Ping verifies the server is reachable.
func Ping(ctx context.Context, rdb *redis.Client) error {
	return rdb.Ping(ctx).Err()
}
