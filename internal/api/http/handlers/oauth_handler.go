package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techtimeoff/leave-service/internal/domain"
	"github.com/techtimeoff/leave-service/internal/service"
)

// OAuthHandler exposes the redirect legs of federated login.
type OAuthHandler struct {
	oauth *service.OAuthService
}

// NewOAuthHandler constructs handler.
func NewOAuthHandler(oauthService *service.OAuthService) *OAuthHandler {
	return &OAuthHandler{oauth: oauthService}
}

// Begin returns the handler for GET /auth/<provider>.
func (h *OAuthHandler) Begin(provider domain.AuthProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target, err := h.oauth.Begin(c.UserContext(), provider)
		if err != nil {
			return err
		}
		return c.Redirect(target, fiber.StatusFound)
	}
}

// Callback returns the handler for GET /auth/<provider>/callback. It always redirects.
func (h *OAuthHandler) Callback(provider domain.AuthProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target := h.oauth.Complete(c.UserContext(), provider, service.CallbackParams{
			Code:  c.Query("code"),
			State: c.Query("state"),
			Error: c.Query("error"),
		})
		return c.Redirect(target, fiber.StatusFound)
	}
}
