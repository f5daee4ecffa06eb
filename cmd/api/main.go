package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/meetpoint/internal/adapters/http"
	natsadapter "github.com/samirrijal/meetpoint/internal/adapters/nats"
	"github.com/samirrijal/meetpoint/internal/adapters/valkey"
	"github.com/samirrijal/meetpoint/internal/core/ports"
	"github.com/samirrijal/meetpoint/internal/pkg/config"
	"github.com/samirrijal/meetpoint/internal/pkg/logging"
	"github.com/samirrijal/meetpoint/internal/pkg/telemetry"
	"github.com/samirrijal/meetpoint/internal/planner"
)

func main() {
	cfg, err := config.Load("meetpoint-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{
		RateLimit:      cfg.Server.RateLimit,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
	}

	// Shared rate-limit counters
	if cfg.Valkey.Enabled {
		store, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, rate limiting per instance", "error", err)
		} else {
			defer store.Close()
			deps.Limiter = store
		}
	}

	// Plan events
	var events ports.EventPublisher
	if cfg.NATS.Enabled {
		conn, err := natsadapter.Connect(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, plan events disabled", "error", err)
		} else {
			pub := natsadapter.NewPublisher(conn)
			defer pub.Close()
			events = pub
			deps.NATS = conn
		}
	}

	meetups, err := planner.NewMeetupService(cfg, events, logger)
	if err != nil {
		log.Fatalf("planner: %v", err)
	}
	deps.Meetups = meetups

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // two postal codes and a preferences string
		AppName:      "Meetpoint API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight plans time to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), deps.RequestTimeout+5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
