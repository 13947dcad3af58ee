package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/samirrijal/formhunt/internal/adapters/wolfram"
	"github.com/samirrijal/formhunt/internal/core/domain"
	"github.com/samirrijal/formhunt/internal/core/usecases"
	"github.com/samirrijal/formhunt/internal/pkg/config"
	"github.com/samirrijal/formhunt/internal/pkg/logging"
)

func main() {
	lat := flag.Float64("lat", 0, "latitude in [-90, 90]")
	lon := flag.Float64("lon", 0, "longitude in [-180, 180]")
	status := flag.Bool("status", false, "print the engine probe result and exit")
	script := flag.Bool("script", false, "print the engine program for -lat/-lon and exit")
	flag.Parse()

	cfg, err := config.Load("formhunt-lookup")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// stdout carries the result; logs go to stderr
	slog.SetDefault(logging.New(cfg.Log.Level, "text", os.Stderr))

	engine := wolfram.Locate(cfg.Engine.Candidates)
	if *status {
		printJSON(map[string]any{"available": engine.Available, "path": engine.Path})
		return
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["lat"] || !set["lon"] {
		fmt.Fprintln(os.Stderr, "usage: lookup -lat <lat> -lon <lon> [-script] | -status")
		os.Exit(2)
	}

	p := domain.GeoPoint{Lat: *lat, Lon: *lon}
	if err := p.Validate(); err != nil {
		log.Fatal(err)
	}

	if *script {
		fmt.Println(wolfram.BuildScript(p))
		return
	}

	svc := usecases.NewMetadataService(wolfram.NewClient(engine.Path, nil), engine, nil, cfg.Engine.TimeoutDuration())
	printJSON(svc.Lookup(context.Background(), p))
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
