package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techtimeoff/leave-service/internal/api/dto"
	"github.com/techtimeoff/leave-service/internal/service"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// AuthHandler exposes local sign-up, login, and session endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	identity *service.IdentityService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, identity *service.IdentityService) *AuthHandler {
	return &AuthHandler{auth: authService, identity: identity}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if err := apperrors.ValidateStruct(req); err != nil {
		return err
	}

	session, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Department:  req.Department,
		EmployeeID:  req.EmployeeID,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse("User registered successfully", session))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if err := apperrors.ValidateStruct(req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(authResponse("Login successful", session))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Me(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewUserResponse(user)})
}

// ChangePassword handles POST /auth/change-password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if err := h.identity.ChangePassword(c.UserContext(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Password updated successfully"})
}

func authResponse(message string, s *service.Session) dto.AuthResponse {
	return dto.AuthResponse{
		Success:   true,
		Message:   message,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      dto.NewUserResponse(s.User),
	}
}
