package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techtimeoff/leave-service/internal/api/dto"
	"github.com/techtimeoff/leave-service/internal/service"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// UsersHandler exposes profile endpoints.
type UsersHandler struct {
	identity *service.IdentityService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(identity *service.IdentityService) *UsersHandler {
	return &UsersHandler{identity: identity}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.identity.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(users),
		"users":   dto.NewUserResponses(users),
	})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.identity.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewUserResponse(user)})
}

// Update handles PUT /users/:id. Users edit themselves; the admin tier may edit anyone.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if actor.ID != id && !actor.Role.IsAdmin() {
		return apperrors.NewForbidden("You can only update your own profile")
	}

	req, err := dto.DecodeUpdateProfile(c.Body())
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	user, err := h.identity.UpdateProfile(c.UserContext(), id, service.ProfileUpdate{
		Name:         req.Name,
		Department:   req.Department,
		EmployeeID:   req.EmployeeID,
		PhoneNumber:  req.PhoneNumber,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User updated successfully",
		"user":    dto.NewUserResponse(user),
	})
}

// Deactivate handles DELETE /users/:id.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if actor.ID == id {
		return apperrors.NewForbidden("You cannot deactivate your own account")
	}

	user, err := h.identity.Deactivate(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deactivated successfully",
		"user":    dto.NewUserResponse(user),
	})
}
