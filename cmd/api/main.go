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
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/formhunt/internal/adapters/http"
	natsadapter "github.com/samirrijal/formhunt/internal/adapters/nats"
	"github.com/samirrijal/formhunt/internal/adapters/wolfram"
	"github.com/samirrijal/formhunt/internal/core/ports"
	"github.com/samirrijal/formhunt/internal/core/usecases"
	"github.com/samirrijal/formhunt/internal/pkg/config"
	"github.com/samirrijal/formhunt/internal/pkg/logging"
	"github.com/samirrijal/formhunt/internal/pkg/metrics"
	"github.com/samirrijal/formhunt/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load("formhunt-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

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

	// Engine probe, once for the process lifetime
	status := wolfram.Locate(cfg.Engine.Candidates)
	metrics.SetEngineAvailable(status.Available)
	if status.Available {
		slog.Info("wolframscript found", "path", status.Path)
	} else {
		slog.Warn("wolframscript not found, metadata lookups will return empty results",
			"candidates", cfg.Engine.Candidates)
	}

	// NATS (optional)
	var events ports.EventPublisher
	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			slog.Warn("nats unavailable, lookup events disabled", "error", err)
		} else {
			defer pub.Close()
			events = pub
			natsConn = pub.Conn()
		}
	}

	engine := wolfram.NewClient(status.Path, nil)
	metadataSvc := usecases.NewMetadataService(engine, status, events, cfg.Engine.TimeoutDuration())

	deps := &http.Dependencies{
		Metadata:       metadataSvc,
		NATS:           natsConn,
		EventPrefix:    cfg.NATS.SubjectPrefix,
		RequestTimeout: cfg.Engine.TimeoutDuration() + 10*time.Second,
		Version:        version,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // a coordinate pair needs far less
		AppName:      "FormHunt API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// In-flight lookups may still be waiting on the engine
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Engine.TimeoutDuration()+5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
