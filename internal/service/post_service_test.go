package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/internal/cache"
	"chirp/internal/models"
)

func TestPostService_CreatePostValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	tests := []struct {
		name    string
		title   string
		content string
	}{
		{"empty title", "", "content"},
		{"empty content", "title", ""},
		{"title too long", strings.Repeat("a", 101), "content"},
		{"content too long", "title", strings.Repeat("a", 101)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.postService.CreatePost(ctx, CreatePostInput{
				UserID:  alice.ID,
				Title:   tt.title,
				Content: tt.content,
			})
			require.Error(t, err)
			appErr, ok := err.(*models.AppError)
			require.True(t, ok)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}

	t.Run("exactly 100 characters is allowed", func(t *testing.T) {
		post, err := env.postService.CreatePost(ctx, CreatePostInput{
			UserID:  alice.ID,
			Title:   strings.Repeat("t", 100),
			Content: strings.Repeat("c", 100),
		})
		require.NoError(t, err)
		assert.NotZero(t, post.ID)
		assert.Equal(t, alice.ID, post.UserID)
	})
}

func TestPostService_FeedNewestFirst(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	for _, title := range []string{"one", "two", "three"} {
		_, err := env.postService.CreatePost(ctx, CreatePostInput{
			UserID:  alice.ID,
			Title:   title,
			Content: title,
		})
		require.NoError(t, err)
	}

	posts, err := env.postService.ListFeed(ctx, ListFeedInput{Limit: 20, Offset: 0})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "three", posts[0].Title)
	assert.Equal(t, "one", posts[2].Title)
}

func TestPostService_FeedPersonalizesLikes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	post, err := env.postService.CreatePost(ctx, CreatePostInput{
		UserID:  alice.ID,
		Title:   "hello",
		Content: "world",
	})
	require.NoError(t, err)

	_, err = env.postService.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	bobFeed, err := env.postService.ListFeed(ctx, ListFeedInput{Limit: 20, CurrentUserID: bob.ID})
	require.NoError(t, err)
	require.Len(t, bobFeed, 1)
	assert.True(t, bobFeed[0].Liked)
	assert.Equal(t, int64(1), bobFeed[0].LikesCount)

	aliceFeed, err := env.postService.ListFeed(ctx, ListFeedInput{Limit: 20, CurrentUserID: alice.ID})
	require.NoError(t, err)
	require.Len(t, aliceFeed, 1)
	assert.False(t, aliceFeed[0].Liked)

	neutralFeed, err := env.postService.ListFeed(ctx, ListFeedInput{Limit: 20})
	require.NoError(t, err)
	require.Len(t, neutralFeed, 1)
	assert.False(t, neutralFeed[0].Liked)
}

// Mutates the package cache client, so no t.Parallel here.
func TestPostService_FeedCacheMatchesRequestedPage(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	for i := 0; i < 5; i++ {
		_, err := env.postService.CreatePost(ctx, CreatePostInput{
			UserID:  alice.ID,
			Title:   fmt.Sprintf("post %d", i),
			Content: "hello",
		})
		require.NoError(t, err)
	}

	// A short first page skips the cache entirely
	short, err := env.postService.ListFeed(ctx, ListFeedInput{Limit: 3, CurrentUserID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, short, 3)
	assert.False(t, mr.Exists(cache.FeedKey()))

	full, err := env.postService.ListFeed(ctx, ListFeedInput{Limit: 20, CurrentUserID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, full, 5)
	assert.True(t, mr.Exists(cache.FeedKey()))

	// The cached default page never answers a smaller request
	short, err = env.postService.ListFeed(ctx, ListFeedInput{Limit: 3, CurrentUserID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, short, 3)

	// And the cached page keeps serving its own shape
	full, err = env.postService.ListFeed(ctx, ListFeedInput{Limit: 20, CurrentUserID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, full, 5)
}

func TestPostService_LikeIsIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	post, err := env.postService.CreatePost(ctx, CreatePostInput{
		UserID:  alice.ID,
		Title:   "hello",
		Content: "world",
	})
	require.NoError(t, err)

	first, err := env.postService.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.True(t, first.Changed)
	assert.Equal(t, int64(1), first.LikeCount)
	assert.Equal(t, alice.ID, first.AuthorID)

	second, err := env.postService.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, second.Liked)
	assert.False(t, second.Changed)
	assert.Equal(t, int64(1), second.LikeCount)
}

func TestPostService_UnlikeIsIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	post, err := env.postService.CreatePost(ctx, CreatePostInput{
		UserID:  alice.ID,
		Title:   "hello",
		Content: "world",
	})
	require.NoError(t, err)

	_, err = env.postService.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	first, err := env.postService.UnlikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, first.Liked)
	assert.True(t, first.Changed)
	assert.Equal(t, int64(0), first.LikeCount)

	second, err := env.postService.UnlikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, int64(0), second.LikeCount)
}

func TestPostService_LikeMissingPost(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.createUser(t, "bob")

	_, err := env.postService.LikePost(ctx, bob.ID, 9999)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPostService_DeletePostOwnership(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	post, err := env.postService.CreatePost(ctx, CreatePostInput{
		UserID:  alice.ID,
		Title:   "hello",
		Content: "world",
	})
	require.NoError(t, err)

	err = env.postService.DeletePost(ctx, bob.ID, post.ID)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	require.NoError(t, env.postService.DeletePost(ctx, alice.ID, post.ID))

	_, err = env.postService.GetPost(ctx, post.ID, 0)
	require.Error(t, err)
}
