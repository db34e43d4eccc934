package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache key inventory. Every cached read and every invalidation goes
// through these helpers so the set of keys in Redis stays auditable.
const (
	userKeyFormat = "user:%d"
	postKeyFormat = "post:%d"
	feedRecentKey = "feed:recent"
)

// TTLs per key class.
const (
	UserTTL = 5 * time.Minute
	PostTTL = 30 * time.Minute
	FeedTTL = 1 * time.Minute
)

// UserKey returns the cache key for a user's profile view.
func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyFormat, userID)
}

// PostKey returns the cache key for a single post.
func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyFormat, postID)
}

// FeedKey returns the cache key for the first page of the recent feed.
func FeedKey() string {
	return feedRecentKey
}

// Invalidate removes the given keys. Safe to call with a nil cache.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}

// InvalidateUser removes a user's cached profile.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePost removes a cached post and the recent feed that may
// contain it.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID), feedRecentKey)
}

// InvalidateFeed removes the cached recent feed page.
func InvalidateFeed(ctx context.Context) {
	Invalidate(ctx, feedRecentKey)
}
