// Package service contains the application's business logic, sitting
// between the HTTP handlers and the repositories.
package service

import (
	"context"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/repository"
)

const (
	maxTitleLen   = 100
	maxContentLen = 100

	defaultFeedLimit = 20
)

// PostService handles post creation, the recent feed, and likes.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

// CreatePostInput carries the fields needed to create a post.
type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
}

// ListFeedInput carries pagination and the viewing user for the feed.
type ListFeedInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
}

// LikeResult reports the state of a like after an idempotent like or
// unlike. AuthorID feeds event publishing and stays out of responses.
type LikeResult struct {
	PostID    uint  `json:"post_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
	AuthorID  uint  `json:"-"`
	Changed   bool  `json:"-"`
}

// NewPostService creates a new post service
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 100 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 100 characters)")
	}

	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	cache.InvalidateFeed(ctx)

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// ListFeed returns posts newest first. The default first page is
// served through the cache in viewer-neutral form and re-personalized
// with the viewer's likes afterwards. Other page shapes go straight to
// the store so the cached entry only ever answers requests for the
// page it holds.
func (s *PostService) ListFeed(ctx context.Context, in ListFeedInput) ([]models.Post, error) {
	if in.Offset == 0 && in.Limit == defaultFeedLimit {
		var posts []models.Post
		err := cache.Aside(ctx, cache.FeedKey(), &posts, cache.FeedTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, in.Limit, in.Offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}

		if in.CurrentUserID != 0 && len(posts) > 0 {
			postIDs := make([]uint, len(posts))
			for i := range posts {
				postIDs[i] = posts[i].ID
			}
			liked, err := s.postRepo.LikedPostIDs(ctx, in.CurrentUserID, postIDs)
			if err != nil {
				return nil, err
			}
			for i := range posts {
				posts[i].Liked = liked[posts[i].ID]
			}
		}
		return posts, nil
	}

	return s.postRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// DeletePost removes a post. Only the author may delete it.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// LikePost records a like. Liking an already-liked post is a no-op
// that still reports the current count.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	inserted, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if inserted {
		cache.InvalidatePost(ctx, postID)
	}

	count, err := s.postRepo.LikeCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{
		PostID:    postID,
		Liked:     true,
		LikeCount: count,
		AuthorID:  post.UserID,
		Changed:   inserted,
	}, nil
}

// UnlikePost removes a like. Unliking a post that was never liked is a
// no-op.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	removed, err := s.postRepo.Unlike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if removed {
		cache.InvalidatePost(ctx, postID)
	}

	count, err := s.postRepo.LikeCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{
		PostID:    postID,
		Liked:     false,
		LikeCount: count,
		AuthorID:  post.UserID,
		Changed:   removed,
	}, nil
}
