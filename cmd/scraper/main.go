package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harwood/go-scrape-listings/config"
	"github.com/harwood/go-scrape-listings/input"
	"github.com/harwood/go-scrape-listings/models"
	"github.com/harwood/go-scrape-listings/scraper"
	"github.com/harwood/go-scrape-listings/store"
)

func main() {
	defaultCfg := config.DefaultConfig()

	connDefault := defaultCfg.Concurrency
	if value, ok, err := config.EnvInt("SCRAPER_CONN"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_CONN: %v\n", err)
		os.Exit(1)
	} else if ok {
		connDefault = value
	}
	dbDefault := defaultCfg.DBPath
	if value, ok := config.EnvString("SCRAPER_DB"); ok {
		dbDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	conn := flag.Int("conn", connDefault, "Number of simultaneous connections")
	dbPath := flag.String("db", dbDefault, "SQLite database to create/use")
	timeoutSec := flag.Int("timeout", 30, "HTTP request timeout (seconds)")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <url-file-or-url>\n", os.Args[0])
		os.Exit(1)
	}

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.Source = flag.Arg(0)
	cfg.Concurrency = *conn
	cfg.DBPath = *dbPath
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("processing urls", slog.String("source", cfg.Source))
	urls, err := input.Load(cfg.Source)
	if err != nil {
		slog.Error("loading urls", slog.Any("error", err))
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("opening store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("close store", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := st.EnsureSchema(ctx); err != nil {
		slog.Error("preparing schema", slog.Any("error", err))
		os.Exit(1)
	}

	s := scraper.New(cfg)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result, runErr := s.Run(ctx, urls, st)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	if runErr != nil {
		slog.Error("scraping failed", slog.Any("error", runErr))
		os.Exit(1)
	}

	printSummary(result, cfg.DBPath)
}

func printSummary(result *models.ScrapeResult, dbPath string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")
	fmt.Printf("  Workers:     %d\n", result.Workers)
	fmt.Printf("  Listings:    %d\n", result.Stored)
	fmt.Printf("  Failed URLs: %d\n", len(result.FailedURLs))
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types: %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Duration:    %v\n", result.EndTime.Sub(result.StartTime))
	fmt.Printf("  Database:    %s\n", dbPath)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
