package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/formhunt/internal/adapters/nats"
	"github.com/samirrijal/formhunt/internal/core/domain"
	"github.com/samirrijal/formhunt/internal/pkg/config"
	"github.com/samirrijal/formhunt/internal/pkg/logging"
)

func main() {
	outcome := flag.String("outcome", "", "only show lookups with this outcome (ok, empty, timeout, ...)")
	flag.Parse()

	cfg, err := config.Load("formhunt-watch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.NATS.URL == "" {
		log.Fatal("nats.url is not configured (FORMHUNT_NATS_URL)")
	}

	conn, err := natsadapter.Connect(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer conn.Drain()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub := natsadapter.NewSubscriber(conn, cfg.NATS.SubjectPrefix)
	defer sub.Close()

	err = sub.SubscribeLookups(ctx, *outcome, func(ctx context.Context, e *domain.LookupEvent) error {
		attrs := []any{
			"outcome", e.Outcome,
			"lat", e.Lat,
			"lon", e.Lon,
			"categories", e.Categories,
			"duration_ms", e.DurationMS,
			"request_id", e.RequestID,
		}
		if e.Error != "" {
			slog.Warn("lookup", append(attrs, "error", e.Error)...)
			return nil
		}
		slog.Info("lookup", attrs...)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("watching lookup events", "subject", natsadapter.Subject(cfg.NATS.SubjectPrefix, *outcome))
	<-ctx.Done()
	slog.Info("watch stopped")
}
