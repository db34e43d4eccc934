package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
)

// GetProfile handles GET /api/users/:username
// @Summary Get a user profile
// @Description Profile with the user's posts and follow graph counts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.ProfileView
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}
	p := parsePagination(c, 20)

	profile, err := s.followService.Profile(c.Context(), username, currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetMyProfile handles GET /api/users/me
// @Summary Get your own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ProfileView
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userService.GetUser(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	p := parsePagination(c, 20)
	profile, err := s.followService.Profile(c.Context(), user.Username, userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/users/me
// @Summary Delete your account
// @Description Delete your account and everything it owns
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /users/me [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if err := s.userService.DeleteAccount(c.Context(), userID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Account deleted",
	})
}
