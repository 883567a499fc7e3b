package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Issues         *handlers.IssuesHandler
	AuthMiddleware *auth.AuthMiddleware
	// Metrics serves the prometheus exposition format when set.
	Metrics fiber.Handler
}

// RegisterRoutes wires HTTP routes. Reads are public; writes go through the
// auth middleware, which is a pass-through unless a JWT secret is configured.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	protect := cfg.AuthMiddleware.Handle

	issues := app.Group("/issues")
	issues.Get("", cfg.Issues.List)
	issues.Get("/:id", cfg.Issues.Get)
	issues.Post("", protect, cfg.Issues.Create)
	issues.Put("/:id", protect, cfg.Issues.Update)
	issues.Patch("/:id/resolve", protect, cfg.Issues.Resolve)
	issues.Delete("/:id", protect, cfg.Issues.Delete)
}
