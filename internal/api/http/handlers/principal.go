package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techtimeoff/leave-service/internal/auth"
	"github.com/techtimeoff/leave-service/internal/service"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized(auth.MsgNoToken)
	}
	return service.Actor{ID: principal.UserID, Role: principal.Role}, nil
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
