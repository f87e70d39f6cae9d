package server

import (
	"time"

	"fritter/internal/middleware"
	"fritter/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	wsTicketPrefix = "ws_ticket:"
	wsTicketTTL    = 30 * time.Second
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) sessionResponse(c *fiber.Ctx, status int, message string, user *models.User) error {
	token, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username, s.now())
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"token":   token,
		"user":    models.NewUserResponse(user),
	})
}

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new account and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Signup request"
// @Success 201 {object} object{message=string,token=string,user=models.UserResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req credentials
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Signup(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	return s.sessionResponse(c, fiber.StatusCreated,
		"Your account was created successfully. You have been logged in as "+user.Username, user)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} object{message=string,token=string,user=models.UserResponse}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentials
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	return s.sessionResponse(c, fiber.StatusOK, "You have logged in successfully", user)
}

// Logout handles POST /api/auth/logout
// @Summary User logout
// @Description Revoke the current session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	s.revokeSession(c)
	return c.JSON(fiber.Map{"message": "You have been logged out successfully."})
}

func (s *Server) revokeSession(c *fiber.Ctx) {
	claims, ok := c.Locals("claims").(*middleware.SessionClaims)
	if !ok {
		return
	}
	if err := middleware.RevokeToken(c.UserContext(), s.redis, claims, s.now()); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to revoke token")
	}
}

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue an event stream ticket
// @Description Returns a short-lived single-use ticket for GET /api/ws?ticket=...
// @Tags realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Realtime tickets are unavailable",
		})
	}
	ticket := uuid.NewString()
	if err := s.redis.Set(c.UserContext(), wsTicketPrefix+ticket, currentUserID(c), wsTicketTTL).Err(); err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}
