package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeanpaul/lifeline/internal/cache"
	"github.com/jeanpaul/lifeline/internal/config"
	"github.com/jeanpaul/lifeline/internal/enrich"
	"github.com/jeanpaul/lifeline/internal/geocode"
	"github.com/jeanpaul/lifeline/internal/persist"
	"github.com/jeanpaul/lifeline/internal/roster"
	"github.com/jeanpaul/lifeline/internal/server"
	"github.com/jeanpaul/lifeline/internal/timeline"
	"github.com/jeanpaul/lifeline/pkg/version"
)

func main() {
	portFlag := flag.Int("port", 0, "Override the listen port")
	versionFlag := flag.Bool("version", false, "Print version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("lifeline %s (%s)\n", version.Version, version.Commit)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if *portFlag != 0 {
		cfg.Port = *portFlag
	}
	if cfg.DeepSeek.APIKey == "" {
		logger.Warn("no DeepSeek API key configured; unknown names will resolve empty")
	}

	// Startup phase: load persisted data, merge the roster, then expose
	// the cache to concurrent use.
	c := cache.New(persist.NewGateway(), cfg.DataFile, logger)
	names := roster.NewLoader(logger).Load(cfg.DocsDir)
	c.Preload(names, timeline.Fallback())

	var resolver enrich.Resolver = enrich.NewDeepSeek(
		cfg.DeepSeek.BaseURL,
		cfg.DeepSeek.APIKey,
		cfg.DeepSeek.Model,
		cfg.DeepSeek.Temperature,
		time.Duration(cfg.DeepSeek.TimeoutSec)*time.Second,
		logger,
	)
	resolver = enrich.WithRetry(resolver, cfg.DeepSeek.MaxRetries)
	if cfg.Geocode.Enabled {
		resolver = enrich.WithGeocoding(resolver, geocode.New(cfg.Geocode.BaseURL, cfg.Geocode.MaxCalls, logger))
	}

	ctx, stopFlush := context.WithCancel(context.Background())
	go c.Run(ctx, time.Duration(cfg.FlushIntervalSec)*time.Second)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.New(c, resolver, cfg.StaticDir, logger).Handler(),
	}
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	stopFlush()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	// One last flush so a clean shutdown loses nothing.
	if wrote, err := c.FlushNow(); err != nil {
		logger.Error("final flush failed", "err", err)
	} else if wrote {
		logger.Info("final flush complete")
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
