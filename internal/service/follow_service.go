package service

import (
	"context"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/repository"
)

// FollowService manages the follow graph and profile assembly.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
}

// FollowResult reports the outcome of an idempotent follow request.
// TargetID feeds event publishing and stays out of responses.
type FollowResult struct {
	Username         string `json:"username"`
	AlreadyFollowing bool   `json:"already_following"`
	FollowingCount   int64  `json:"following_count"`
	TargetID         uint   `json:"-"`
}

// UnfollowResult reports the outcome of an idempotent unfollow request.
type UnfollowResult struct {
	Username       string `json:"username"`
	WasFollowing   bool   `json:"was_following"`
	FollowingCount int64  `json:"following_count"`
	TargetID       uint   `json:"-"`
}

// ProfileView is the assembled profile page for a user: identity,
// their posts, and follow graph counts relative to the viewer.
type ProfileView struct {
	User           models.User   `json:"user"`
	Posts          []models.Post `json:"posts"`
	FollowingCount int64         `json:"following_count"`
	FollowerCount  int64         `json:"follower_count"`
	IsFollowing    bool          `json:"is_following"`
}

// NewFollowService creates a new follow service
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, postRepo repository.PostRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo, postRepo: postRepo}
}

// resolveUsername maps a username to its user or a not found error.
func (s *FollowService) resolveUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// Follow makes actorID follow the user named targetUsername. Following
// someone already followed is reported, not rejected. Following
// yourself is rejected.
func (s *FollowService) Follow(ctx context.Context, actorID uint, targetUsername string) (*FollowResult, error) {
	target, err := s.resolveUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, models.NewSelfActionError("You cannot follow yourself")
	}

	created, err := s.followRepo.Create(ctx, actorID, target.ID)
	if err != nil {
		return nil, err
	}
	if created {
		cache.InvalidateUser(ctx, actorID)
		cache.InvalidateUser(ctx, target.ID)
	}

	count, err := s.followRepo.CountFollowing(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{
		Username:         target.Username,
		AlreadyFollowing: !created,
		FollowingCount:   count,
		TargetID:         target.ID,
	}, nil
}

// Unfollow removes the follow edge if present. Unfollowing someone not
// followed is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, actorID uint, targetUsername string) (*UnfollowResult, error) {
	target, err := s.resolveUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, models.NewSelfActionError("You cannot unfollow yourself")
	}

	removed, err := s.followRepo.Delete(ctx, actorID, target.ID)
	if err != nil {
		return nil, err
	}
	if removed {
		cache.InvalidateUser(ctx, actorID)
		cache.InvalidateUser(ctx, target.ID)
	}

	count, err := s.followRepo.CountFollowing(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return &UnfollowResult{
		Username:       target.Username,
		WasFollowing:   removed,
		FollowingCount: count,
		TargetID:       target.ID,
	}, nil
}

// Following returns the users that username follows.
func (s *FollowService) Following(ctx context.Context, username string, limit, offset int) ([]models.User, error) {
	user, err := s.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, user.ID, limit, offset)
}

// Followers returns the users that follow username.
func (s *FollowService) Followers(ctx context.Context, username string, limit, offset int) ([]models.User, error) {
	user, err := s.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, user.ID, limit, offset)
}

// Profile assembles the profile page for username as seen by
// currentUserID.
func (s *FollowService) Profile(ctx context.Context, username string, currentUserID uint, limit, offset int) (*ProfileView, error) {
	user, err := s.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.GetByUserID(ctx, user.ID, limit, offset, currentUserID)
	if err != nil {
		return nil, err
	}

	followingCount, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followerCount, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if currentUserID != 0 && currentUserID != user.ID {
		isFollowing, err = s.followRepo.IsFollowing(ctx, currentUserID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfileView{
		User:           *user,
		Posts:          posts,
		FollowingCount: followingCount,
		FollowerCount:  followerCount,
		IsFollowing:    isFollowing,
	}, nil
}
