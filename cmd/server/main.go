package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/classpeak/group-booking/internal/booking"
	"github.com/classpeak/group-booking/internal/cache"
	"github.com/classpeak/group-booking/internal/config"
	"github.com/classpeak/group-booking/internal/database"
	"github.com/classpeak/group-booking/internal/handler"
	"github.com/classpeak/group-booking/internal/queue"
	"github.com/classpeak/group-booking/internal/repository"
	"github.com/classpeak/group-booking/internal/router"
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// Connect to MySQL; the engine cannot run without its store.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables the availability cache
	// and the rate limiter, and the API keeps serving from MySQL.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; availability cache and rate limiting disabled")
	}
	cacheCfg := config.LoadAvailabilityCacheConfig()
	if !cacheCfg.Enabled {
		rdb = nil
	}
	avail := cache.NewAvailability(rdb, cacheCfg.TTL, cacheCfg.Prefix)

	// Wire the engine onto its MySQL store and build the handlers.
	engine := booking.NewEngine(repository.NewStore(db))
	sessions := handler.NewSessionHandler(engine, avail)
	bookings := handler.NewBookingHandler(engine, avail)
	stats := handler.NewStatsHandler(engine)

	// Drain participant events into the notification log in the
	// background; the consumer reconnects on its own.
	go func() {
		if err := queue.StartParticipantConsumer(); err != nil {
			log.Printf("participant consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBooking(e, sessions, bookings, stats, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
