package server

import (
	"fritter/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/users/me
// @Summary Current account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(models.NewUserResponse(user))
}

// GetUserByUsername handles GET /api/users/:username
// @Summary Look up an account
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	user, err := s.userService.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(models.NewUserResponse(user))
}

// DeleteMe handles DELETE /api/users/me
// @Summary Delete the current account
// @Description Removes the account with its freets, listings and fritterPay profiles, and ends the session
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /users/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	if err := s.userService.Delete(c.UserContext(), currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	s.revokeSession(c)
	return c.JSON(fiber.Map{"message": "Your account has been deleted successfully."})
}
