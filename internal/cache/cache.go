// Package cache provides an optional Redis-backed cache for hot authorization
// lookups. Every request resolves the caller's role within the active company;
// caching that lookup keeps the permission check off the database on the hot
// path. The cache is best-effort: errors fall through to the database and are
// logged at debug level, never surfaced to callers.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoleCache caches user role assignments per company.
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with a ping.
func New(addr, password string, db int, ttl time.Duration) (*RoleCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RoleCache{client: client, ttl: ttl}, nil
}

func roleKey(userID, companyID string) string {
	return fmt.Sprintf("role:%s:%s", userID, companyID)
}

// GetRole returns the cached role for a user within a company.
// The second return is false on a miss or any Redis error.
func (c *RoleCache) GetRole(ctx context.Context, userID, companyID string) (string, bool) {
	if c == nil {
		return "", false
	}

	role, err := c.client.Get(ctx, roleKey(userID, companyID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Debug("role cache get failed", "error", err)
		}
		return "", false
	}
	return role, true
}

// SetRole stores a user's role within a company.
func (c *RoleCache) SetRole(ctx context.Context, userID, companyID, role string) {
	if c == nil {
		return
	}

	if err := c.client.Set(ctx, roleKey(userID, companyID), role, c.ttl).Err(); err != nil {
		slog.Debug("role cache set failed", "error", err)
	}
}

// InvalidateRole drops the cached role for a user within a company.
// Called when a member's role changes or the member is removed.
func (c *RoleCache) InvalidateRole(ctx context.Context, userID, companyID string) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, roleKey(userID, companyID)).Err(); err != nil {
		slog.Debug("role cache invalidate failed", "error", err)
	}
}

// Close releases the underlying Redis connection.
func (c *RoleCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
