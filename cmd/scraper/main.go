package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/siamscrape/product-scraper/internal/browser"
	"github.com/siamscrape/product-scraper/internal/config"
	"github.com/siamscrape/product-scraper/internal/database"
	"github.com/siamscrape/product-scraper/internal/extractor"
	"github.com/siamscrape/product-scraper/internal/output"
	"github.com/siamscrape/product-scraper/internal/queue"
	"github.com/siamscrape/product-scraper/internal/ratelimit"
	"github.com/siamscrape/product-scraper/internal/retailer"
	"github.com/siamscrape/product-scraper/internal/scraper"
)

func main() {
	urlFile := flag.String("urls", "", "file with one product URL per line")
	outPath := flag.String("output", "", "output file path (default from OUTPUT_PATH)")
	format := flag.String("format", "", "output format: json, jsonl or csv (default from OUTPUT_FORMAT)")
	store := flag.Bool("store", false, "also persist records to postgres")
	enqueue := flag.Bool("enqueue", false, "push urls onto the shared job queue instead of scraping locally")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	urls, err := collectURLs(*urlFile, flag.Args())
	if err != nil {
		logger.Error("failed to read urls", "error", err)
		os.Exit(1)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "no urls given: pass urls as arguments or use -urls file")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *enqueue {
		if err := enqueueURLs(ctx, cfg, urls, logger); err != nil {
			logger.Error("failed to enqueue urls", "error", err)
			os.Exit(1)
		}
		return
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

	var records *database.RecordRepository
	if *store {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: 5,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		records = database.NewRecordRepository(db)
		if err := records.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
	}

	dispatcher := extractor.NewDispatcher(retailer.NewRegistry(), logger)
	limiter := ratelimit.NewAdaptiveRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)
	service := scraper.NewService(b, dispatcher, limiter, records, logger, scraper.Options{
		MaxRetries:  cfg.Scraper.MaxRetries,
		Concurrency: cfg.Scraper.ConcurrentLimit,
	})

	out, err := os.Create(cfg.Output.Path)
	if err != nil {
		logger.Error("failed to create output file", "path", cfg.Output.Path, "error", err)
		os.Exit(1)
	}
	defer out.Close()

	writer, err := output.New(cfg.Output.Format, out)
	if err != nil {
		logger.Error("failed to create writer", "error", err)
		os.Exit(1)
	}

	logger.Info("starting batch scrape", "urls", len(urls), "output", cfg.Output.Path)

	summary := output.NewSummary()
	results := service.ScrapeAll(ctx, urls)

	for _, r := range results {
		if r.Err != nil {
			summary.Failure()
			continue
		}
		if err := writer.Write(r.Record); err != nil {
			logger.Error("failed to write record", "url", r.URL, "error", err)
			summary.Failure()
			continue
		}
		summary.Record(r.Record)
	}

	if err := writer.Close(); err != nil {
		logger.Error("failed to finalize output", "error", err)
	}
	if err := summary.Finish(os.Stderr); err != nil {
		logger.Error("failed to write summary", "error", err)
	}

	logger.Info("batch scrape finished", "succeeded", summary.Succeeded, "failed", summary.Failed)
	if summary.Failed > 0 && summary.Succeeded == 0 {
		os.Exit(1)
	}
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

func enqueueURLs(ctx context.Context, cfg *config.Config, urls []string, logger *slog.Logger) error {
	hostname, _ := os.Hostname()
	q, err := queue.NewRedisStreamQueue(ctx, cfg.Queue.RedisURL, cfg.Queue.Stream, cfg.Queue.Group, hostname)
	if err != nil {
		return err
	}
	defer q.Close()

	registry := retailer.NewRegistry()
	for _, url := range urls {
		job := &queue.Job{
			ID:        uuid.New().String(),
			URL:       url,
			Retailer:  registry.NameForURL(url),
			CreatedAt: time.Now().UTC(),
		}
		if err := q.Push(ctx, job); err != nil {
			return err
		}
	}

	logger.Info("urls enqueued", "count", len(urls), "stream", cfg.Queue.Stream)
	return nil
}

func collectURLs(path string, args []string) ([]string, error) {
	urls := append([]string{}, args...)
	if path == "" {
		return urls, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
