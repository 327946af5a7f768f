package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/siamscrape/product-scraper/internal/api"
	"github.com/siamscrape/product-scraper/internal/browser"
	"github.com/siamscrape/product-scraper/internal/config"
	"github.com/siamscrape/product-scraper/internal/database"
	"github.com/siamscrape/product-scraper/internal/extractor"
	"github.com/siamscrape/product-scraper/internal/queue"
	"github.com/siamscrape/product-scraper/internal/ratelimit"
	"github.com/siamscrape/product-scraper/internal/retailer"
	"github.com/siamscrape/product-scraper/internal/scraper"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: 10,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	records := database.NewRecordRepository(db)
	if err := records.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		UserAgent:      cfg.Scraper.UserAgents[0],
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	dispatcher := extractor.NewDispatcher(retailer.NewRegistry(), logger)
	limiter := ratelimit.NewAdaptiveRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)
	service := scraper.NewService(b, dispatcher, limiter, records, logger, scraper.Options{
		MaxRetries:  cfg.Scraper.MaxRetries,
		Concurrency: cfg.Scraper.ConcurrentLimit,
	})
	tracker := scraper.NewJobTracker(ctx, service)

	// In redis mode this process also drains the shared job stream.
	if cfg.Queue.Type == "redis" {
		hostname, _ := os.Hostname()
		q, err := queue.NewRedisStreamQueue(ctx, cfg.Queue.RedisURL, cfg.Queue.Stream, cfg.Queue.Group, hostname)
		if err != nil {
			logger.Error("failed to connect to redis queue", "error", err)
			os.Exit(1)
		}
		defer q.Close()

		go func() {
			if err := service.Run(ctx, q); err != nil && err != context.Canceled {
				logger.Error("queue worker stopped with error", "error", err)
			}
		}()
	}

	handlers := api.NewHandlers(dispatcher, tracker, records, logger)
	router := api.NewRouter(handlers)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
