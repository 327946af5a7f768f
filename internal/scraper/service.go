// Package scraper drives the fetch-extract-store loop: pull a product
// URL, fetch the rendered page, run extraction, persist the record.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/siamscrape/product-scraper/internal/database"
	"github.com/siamscrape/product-scraper/internal/extractor"
	"github.com/siamscrape/product-scraper/internal/models"
	"github.com/siamscrape/product-scraper/internal/queue"
	"github.com/siamscrape/product-scraper/internal/ratelimit"
)

// Fetcher retrieves the rendered HTML of a product page.
type Fetcher interface {
	FetchHTML(url string, maxRetries int) (string, error)
}

// Result is the outcome of scraping one URL.
type Result struct {
	URL    string
	Record *models.ProductRecord
	Err    error
}

type Options struct {
	MaxRetries  int
	Concurrency int
}

type Service struct {
	fetcher    Fetcher
	dispatcher *extractor.Dispatcher
	limiter    *ratelimit.AdaptiveRateLimiter
	records    *database.RecordRepository
	logger     *slog.Logger
	opts       Options
}

// NewService wires the scrape pipeline. records may be nil when results
// only go to an output file.
func NewService(fetcher Fetcher, dispatcher *extractor.Dispatcher, limiter *ratelimit.AdaptiveRateLimiter, records *database.RecordRepository, logger *slog.Logger, opts Options) *Service {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Service{
		fetcher:    fetcher,
		dispatcher: dispatcher,
		limiter:    limiter,
		records:    records,
		logger:     logger.With("component", "scraper"),
		opts:       opts,
	}
}

// ScrapeURL processes a single product page end to end.
func (s *Service) ScrapeURL(ctx context.Context, url string) (*models.ProductRecord, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	html, err := s.fetcher.FetchHTML(url, s.opts.MaxRetries)
	if err != nil {
		s.limiter.RecordError()
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	record, err := s.dispatcher.ExtractRecord(html, url)
	if err != nil {
		if errors.Is(err, extractor.ErrEmptyContent) {
			s.limiter.RecordError()
		}
		return nil, fmt.Errorf("failed to extract record: %w", err)
	}
	s.limiter.RecordSuccess()

	if s.records != nil {
		if err := s.records.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to save record: %w", err)
		}
	}

	s.logger.Info("scraped product",
		"url", url,
		"retailer", record.Retailer,
		"product_key", record.ProductKey,
		"has_discount", record.HasDiscount)

	return record, nil
}

// ScrapeAll fans URLs out over the configured number of workers and
// collects a result per URL, in completion order. Individual failures do
// not stop the batch.
func (s *Service) ScrapeAll(ctx context.Context, urls []string) []Result {
	jobs := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				record, err := s.ScrapeURL(ctx, url)
				if err != nil {
					s.logger.Error("scrape failed", "url", url, "error", err)
				}
				results <- Result{URL: url, Record: record, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, url := range urls {
			select {
			case <-ctx.Done():
				return
			case jobs <- url:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []Result
	for r := range results {
		collected = append(collected, r)
	}
	return collected
}

// Run consumes jobs from a queue until the context is cancelled or the
// queue is closed.
func (s *Service) Run(ctx context.Context, q queue.Queue) error {
	s.logger.Info("worker started", "concurrency", s.opts.Concurrency)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				job, err := q.Pop(ctx)
				if err != nil {
					if errors.Is(err, queue.ErrQueueClosed) || errors.Is(err, context.Canceled) {
						return
					}
					if errors.Is(err, queue.ErrQueueEmpty) {
						continue
					}
					s.logger.Error("failed to pop job", "worker", worker, "error", err)
					continue
				}

				if _, err := s.ScrapeURL(ctx, job.URL); err != nil {
					s.logger.Error("job failed",
						"worker", worker, "job_id", job.ID, "url", job.URL, "error", err)
				}
			}
		}(i)
	}

	wg.Wait()
	s.logger.Info("worker stopped")
	return ctx.Err()
}
