package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"condo-extractor/internal/api"
	"condo-extractor/internal/cache"
	"condo-extractor/internal/config"
	"condo-extractor/internal/crawler"
	"condo-extractor/internal/feed"
	"condo-extractor/internal/listing"
	"condo-extractor/internal/metrics"
	"condo-extractor/internal/photo"
	"condo-extractor/pkg/logger"
)

func main() {
	cfgPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	l, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, IncludeCaller: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = l.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := crawler.NewHTTPClient(cfg.FetchTimeoutDuration(), cfg.DialTimeoutDuration(), cfg.MaxBodyBytes,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithRateLimit(cfg.RateLimitRPS),
	)
	store := cache.NewStore(cfg.CacheDir, l.Named("cache"))
	svc := listing.NewService(listing.Deps{
		Validator: listing.NewValidator(cfg.ListingPattern()),
		Fetcher:   client,
		Store:     store,
		Photos:    photo.NewResolver(cfg.CacheDir, cfg.MediaPattern(), client, l.Named("photo")),
		Metrics:   metrics.New(reg),
		Log:       l.Named("listing"),
	})

	srvAPI := api.New(api.Options{
		Extractor:      svc,
		Feed:           feed.NewAggregator(store, l.Named("feed")),
		CacheDir:       cfg.CacheDir,
		Gatherer:       reg,
		Log:            l.Named("http"),
		RequestTimeout: 2*cfg.FetchTimeoutDuration() + 5*time.Second,
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srvAPI.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		l.Info("server listening", zap.String("addr", cfg.ListenAddr), zap.String("cache_dir", cfg.CacheDir))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("shutdown", zap.Error(err))
	}
	l.Info("bye")
}
