package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
	"chirp/internal/notifications"
)

// FollowUser handles POST /api/users/:username/follow
// @Summary Follow a user
// @Description Follow a user. Following someone already followed is a no-op.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} service.FollowResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}
	userID := currentUserID(c)

	result, err := s.followService.Follow(c.Context(), userID, username)
	if err != nil {
		return respondServiceError(c, err)
	}

	if !result.AlreadyFollowing && s.notifier != nil {
		s.publishUserEvent(c, result.TargetID, notifications.Event{
			Type: notifications.EventNewFollower,
			Payload: fiber.Map{
				"user_id": userID,
			},
		})
	}

	return c.JSON(result)
}

// UnfollowUser handles DELETE /api/users/:username/follow
// @Summary Unfollow a user
// @Description Stop following a user. Unfollowing someone not followed is a no-op.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} service.UnfollowResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	userID := currentUserID(c)

	result, err := s.followService.Unfollow(c.Context(), userID, username)
	if err != nil {
		return respondServiceError(c, err)
	}

	if result.WasFollowing && s.notifier != nil {
		s.publishUserEvent(c, result.TargetID, notifications.Event{
			Type: notifications.EventLostFollower,
			Payload: fiber.Map{
				"user_id": userID,
			},
		})
	}

	return c.JSON(result)
}

// GetFollowing handles GET /api/users/:username/following
// @Summary List followed users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	username := c.Params("username")
	p := parsePagination(c, 20)

	users, err := s.followService.Following(c.Context(), username, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// GetFollowers handles GET /api/users/:username/followers
// @Summary List followers
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	username := c.Params("username")
	p := parsePagination(c, 20)

	users, err := s.followService.Followers(c.Context(), username, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}
