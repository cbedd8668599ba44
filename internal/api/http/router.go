package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techtimeoff/leave-service/internal/api/http/handlers"
	"github.com/techtimeoff/leave-service/internal/auth"
	"github.com/techtimeoff/leave-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	OAuth          *handlers.OAuthHandler
	Users          *handlers.UsersHandler
	Leaves         *handlers.LeavesHandler
	AuthMiddleware *auth.AuthMiddleware
	// OAuthProviders lists the providers with credentials. Others get no routes.
	OAuthProviders []domain.AuthProvider
}

// RegisterRoutes wires HTTP routes at the root and again under /api.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	mount(app.Group(""), cfg)
	mount(app.Group("/api"), cfg)
}

func mount(router fiber.Router, cfg RouteConfig) {
	gate := cfg.AuthMiddleware.Handle

	authGroup := router.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", gate, cfg.Auth.Me)
	authGroup.Post("/change-password", gate, cfg.Auth.ChangePassword)
	for _, provider := range cfg.OAuthProviders {
		authGroup.Get("/"+string(provider), cfg.OAuth.Begin(provider))
		authGroup.Get("/"+string(provider)+"/callback", cfg.OAuth.Callback(provider))
	}

	users := router.Group("/users", gate)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", auth.RequireAdmin(), cfg.Users.Deactivate)

	leaves := router.Group("/leaves", gate)
	leaves.Post("/", cfg.Leaves.Create)
	leaves.Get("/", cfg.Leaves.List)
	leaves.Get("/:id", cfg.Leaves.Get)
	leaves.Put("/:id", cfg.Leaves.Update)
	leaves.Get("/:id/history", cfg.Leaves.History)
	leaves.Put("/:id/approve", auth.RequireReviewer(), cfg.Leaves.Approve)
	leaves.Put("/:id/reject", auth.RequireReviewer(), cfg.Leaves.Reject)
	leaves.Delete("/:id", cfg.Leaves.Cancel)
}
