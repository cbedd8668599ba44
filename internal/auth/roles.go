package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techtimeoff/leave-service/internal/domain"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(MsgNoToken)
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireReviewer allows roles that may approve or reject leave requests.
func RequireReviewer() fiber.Handler {
	return RequireRole(domain.RoleCoordinator, domain.RoleChiefCoordinator, domain.RolePrincipal)
}

// RequireAdmin allows roles that manage other accounts.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleChiefCoordinator, domain.RolePrincipal)
}
