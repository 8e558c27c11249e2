package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Optional .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/andariego/trip-reservation/internal/config"     // Internal config loader
	"github.com/andariego/trip-reservation/internal/database"   // MySQL pool
	"github.com/andariego/trip-reservation/internal/handler"    // HTTP handlers
	"github.com/andariego/trip-reservation/internal/queue"      // seats.changed consumer
	"github.com/andariego/trip-reservation/internal/repository" // persistence layer
	"github.com/andariego/trip-reservation/internal/router"     // Internal router setup
	"github.com/andariego/trip-reservation/internal/trip"       // capacity coordinator
)

func main() {
	if err := godotenv.Load(); err != nil { // Load .env when present
		log.Println("no .env file found (using environment variables)")
	}
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	routeRepo := repository.NewRouteRepo(db)
	runRepo := repository.NewRunRepo(db)
	resRepo := repository.NewReservationRepo(db)
	coordinator := trip.NewCoordinator(runRepo) // serializes seat mutations per run

	rdb := config.NewRedisClient() // nil disables caching and rate limiting
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// Consume seat-change events in the background; the consumer keeps
	// its own reconnect loop.
	go func() {
		if err := queue.StartSeatsConsumer(); err != nil {
			log.Printf("seats-consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAPI(e,
		handler.NewRouteHandler(routeRepo, cfg.DefaultCompanyID),
		handler.NewRunHandler(routeRepo, runRepo, coordinator, cfg.DefaultCompanyID),
		handler.NewReservationHandler(runRepo, resRepo, coordinator),
		rdb,
	)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
