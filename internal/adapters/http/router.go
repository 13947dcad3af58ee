package http

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/formhunt/internal/pkg/logging"
	"github.com/samirrijal/formhunt/internal/pkg/metrics"
)

// SetupRoutes registers middleware and all routes. The app should be created
// with ErrorHandler as its fiber.Config.ErrorHandler.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Panics become errors handled by ErrorHandler (generic 500)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logging.FromContext(c.UserContext()).Error("panic in handler",
				"path", c.Path(),
				"panic", fmt.Sprint(e),
				"stack", string(debug.Stack()),
			)
		},
	}))

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID, then a request-scoped logger carrying it
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	app.Use(DeprecationMiddleware(legacyRoutes))
	app.Use(CachingMiddleware())

	app.Get("/", IndexHandler())

	api := app.Group("/api")
	api.Get("/health", HealthHandler(deps))
	api.Get("/ready", ReadyHandler(deps))
	api.Get("/categories", CategoriesHandler())

	status := EngineStatusHandler(deps)
	api.Get("/engine-status", status)
	api.Get("/wolfram-status", status)

	// Lookups block on the engine; the route deadline sits above the engine
	// timeout so a slow engine still answers {} instead of 408.
	lookup := timeout.NewWithContext(MetadataHandler(deps), deps.requestTimeout())
	api.Post("/metadata", lookup)
	api.Post("/wolfram-metadata", lookup)

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, deps.OpenAPIPath)

	// Live lookup events for operators
	app.Use("/ws", WebSocketUpgrade(deps))
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS, deps.EventPrefix)))
}
