package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/peergrade-io/peergrade-api/internal/config"
	"github.com/peergrade-io/peergrade-api/internal/handler"
	"github.com/peergrade-io/peergrade-api/internal/middleware"
	"github.com/peergrade-io/peergrade-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	TaskHandler       *handler.TaskHandler
	AssignmentHandler *handler.AssignmentHandler
	ReviewHandler     *handler.ReviewHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.TaskHandler != nil {
		tasks := api.Group("/tasks", jwtMiddleware)
		deps.TaskHandler.Register(tasks)

		if deps.AssignmentHandler != nil {
			// Plan building re-shuffles on every call; keep it rate limited.
			tasks.Post("/:id/review-plan",
				middleware.RateLimit("review-plan", cfg.RateLimitMax, cfg.RateLimitSpan))
			deps.AssignmentHandler.Register(tasks)
		}
	}

	if deps.ReviewHandler != nil {
		reviews := api.Group("/reviews", jwtMiddleware)
		deps.ReviewHandler.Register(reviews)
	}
}
