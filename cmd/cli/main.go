package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"condo-extractor/internal/cache"
	"condo-extractor/internal/config"
	"condo-extractor/internal/crawler"
	"condo-extractor/internal/feed"
	"condo-extractor/internal/ioformats"
	"condo-extractor/internal/listing"
	"condo-extractor/internal/models"
	"condo-extractor/internal/photo"
	"condo-extractor/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 2 for usage errors, 1 when any step or listing fails.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	one := fs.String("url", "", "listing URL or bare listing id")
	in := fs.String("input", "", "input file (csv with 'url' column or ndjson)")
	showFeed := fs.Bool("feed", false, "print the chart feed built from the cache as NDJSON")
	out := fs.String("output", "", "output NDJSON file (default stdout)")
	cfgPath := fs.String("config", "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *one == "" && *in == "" && !*showFeed {
		fmt.Fprintln(stderr, "one of --url, --input or --feed is required")
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 1
	}
	l, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintln(stderr, "logger:", err)
		return 1
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(stderr, "create output:", err)
			return 1
		}
		defer f.Close()
		w = f
	}

	store := cache.NewStore(cfg.CacheDir, l.Named("cache"))

	if *showFeed {
		points, err := feed.NewAggregator(store, l.Named("feed")).Build(ctx)
		if err != nil {
			l.Error("build feed", zap.Error(err))
			return 1
		}
		if err := ioformats.WriteNDJSON(w, points); err != nil {
			l.Error("write feed", zap.Error(err))
			return 1
		}
		return 0
	}

	inputs := []string{*one}
	if *in != "" {
		inputs, err = ioformats.ReadURLs(*in)
		if err != nil {
			fmt.Fprintln(stderr, "read input:", err)
			return 1
		}
	}

	client := crawler.NewHTTPClient(cfg.FetchTimeoutDuration(), cfg.DialTimeoutDuration(), cfg.MaxBodyBytes,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithRateLimit(cfg.RateLimitRPS),
	)
	svc := listing.NewService(listing.Deps{
		Validator: listing.NewValidator(cfg.ListingPattern()),
		Fetcher:   client,
		Store:     store,
		Photos:    photo.NewResolver(cfg.CacheDir, cfg.MediaPattern(), client, l.Named("photo")),
		Log:       l.Named("listing"),
	})

	// one listing at a time; the client's limiter spaces the requests
	failed := 0
	for _, input := range inputs {
		if ctx.Err() != nil {
			break
		}
		line := models.BatchLine{Input: input}
		res, err := svc.Extract(ctx, listing.BuildURL(input))
		if err != nil {
			line.Error = err.Error()
			failed++
		} else {
			line.Result = &res
		}
		if err := ioformats.WriteNDJSON(w, []models.BatchLine{line}); err != nil {
			l.Error("write result", zap.Error(err))
			return 1
		}
	}

	l.Info("batch done", zap.Int("inputs", len(inputs)), zap.Int("failed", failed))
	if failed > 0 {
		return 1
	}
	return 0
}
