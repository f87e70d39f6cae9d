package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fritter/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	FreetListKey       = "freets:all"
	MerchantListKey    = "freets:merchant"
	AuthorFreetsPrefix = "freets:author:%d"
	UserKeyPrefix      = "user:%d"
)

const (
	UserTTL = 5 * time.Minute
	// ListTTL is the fallback when no FEED_CACHE_TTL_SECONDS is configured.
	ListTTL = 30 * time.Second
	// generationTTL outlives any cached value the counter guards.
	generationTTL = 24 * time.Hour
)

func AuthorFreetsKey(authorID uint) string {
	return fmt.Sprintf(AuthorFreetsPrefix, authorID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// Invalidate deletes the given keys and bumps their invalidation counters so
// fills already in flight are discarded. Failures are logged and otherwise
// ignored.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	_, err := client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		for _, key := range keys {
			p.Incr(ctx, generationKey(key))
			p.Expire(ctx, generationKey(key), generationTTL)
		}
		return nil
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidateFreets drops every cached freet list the author appears in.
func InvalidateFreets(ctx context.Context, authorIDs ...uint) {
	keys := []string{FreetListKey, MerchantListKey}
	for _, id := range authorIDs {
		keys = append(keys, AuthorFreetsKey(id))
	}
	Invalidate(ctx, keys...)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
