package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/andariego/trip-reservation/internal/config"     // cache and rate-limit settings
	"github.com/andariego/trip-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/andariego/trip-reservation/internal/middleware" // Redis-backed cache and rate limiting
)

// RegisterRoutes registers routes that do not require any middleware on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAPI wires the booking API under /v1.  The rate limiter fronts
// every endpoint; the response cache fronts only the read-only segment
// projection, because booking mutations must always see live seat
// counts.  Both middlewares degrade to pass-through when rdb is nil.
func RegisterAPI(e *echo.Echo, routes *handler.RouteHandler, runs *handler.RunHandler, reservations *handler.ReservationHandler, rdb *redis.Client) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	g := e.Group("/v1", rl)

	// Route plans: the static inputs runs are published from.
	g.POST("/routes", routes.Create)
	g.GET("/routes", routes.List)
	g.GET("/routes/:id", routes.Get)
	g.GET("/routes/:id/runs", runs.ListRuns)

	// Run publishing and projection.
	g.POST("/runs", runs.Publish)
	g.PUT("/runs/:id", runs.Republish)
	g.DELETE("/runs/:id", runs.DeleteRun)
	// The segment listing is the search/display projection; it is the
	// one endpoint worth caching.
	g.GET("/runs/:id/segments", runs.ListSegments, cache)

	// Booking flow.
	g.POST("/runs/:id/reservations", reservations.Create)
	g.GET("/runs/:id/reservations", reservations.ListByRun)
	g.GET("/reservations/:id", reservations.Get)
	g.DELETE("/reservations/:id", reservations.Cancel)
	g.POST("/reservations/:id/transfer", reservations.Transfer)
}
