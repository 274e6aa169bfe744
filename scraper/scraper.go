// Package scraper drives the fetch, extract, map, persist pipeline with a
// bounded pool of workers draining a shared URL queue.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harwood/go-scrape-listings/config"
	"github.com/harwood/go-scrape-listings/models"
	"github.com/harwood/go-scrape-listings/parser"
	"github.com/harwood/go-scrape-listings/queue"
	"github.com/harwood/go-scrape-listings/store"
)

// Scraper owns the worker pool and the shared fetcher for one run.
type Scraper struct {
	cfg     *config.Config
	fetcher *Fetcher
	Metrics *Metrics

	stored int64

	mu           sync.Mutex
	failedURLs   []string
	errorsByType map[string]int
	fatalErr     error

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New builds a scraper instance configured from cfg.
func New(cfg *config.Config) *Scraper {
	return &Scraper{
		cfg:          cfg,
		fetcher:      NewFetcher(cfg),
		Metrics:      NewMetrics(),
		errorsByType: make(map[string]int),
		shutdown:     make(chan struct{}),
	}
}

// Fetcher exposes the underlying fetcher. Used by tests to stub transport.
func (s *Scraper) Fetcher() *Fetcher {
	return s.fetcher
}

// Run drains the URL set with a bounded worker pool and blocks until every
// worker has exited. The effective concurrency is the configured level
// clamped to the number of URLs; a throttling signal from any worker stops
// the whole run with an error, leaving already written rows in place.
func (s *Scraper) Run(ctx context.Context, urls []string, st *store.Store) (*models.ScrapeResult, error) {
	if len(urls) == 0 {
		return nil, ErrNoWork
	}

	workers := min(s.cfg.Concurrency, len(urls))
	if workers < 1 || workers > config.MaxConcurrency {
		return nil, fmt.Errorf("%w: %d", ErrInvalidConcurrency, workers)
	}

	q := queue.New()
	for _, url := range urls {
		q.Put(url)
	}

	slog.Info("scraping begins",
		slog.Int("urls", q.Len()),
		slog.Int("workers", workers),
	)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.worker(ctx, id, q, st)
		}(i)
	}
	wg.Wait()

	result := &models.ScrapeResult{
		StartTime:    start,
		EndTime:      time.Now(),
		Workers:      workers,
		Stored:       int(atomic.LoadInt64(&s.stored)),
		FailedURLs:   s.snapshotFailedURLs(),
		ErrorsByType: s.snapshotErrors(),
	}
	result.ErrorCount = len(result.FailedURLs)

	s.mu.Lock()
	err := s.fatalErr
	s.mu.Unlock()
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("run interrupted: %w", ctx.Err())
	}
	return result, err
}

// worker loops dequeue, fetch, extract, map, persist until the queue is
// empty or the run is aborted. Each worker pins its own store connection.
func (s *Scraper) worker(ctx context.Context, id int, q *queue.Queue, st *store.Store) {
	session, err := st.Session(ctx)
	if err != nil {
		s.setFatal(fmt.Errorf("open store session: %w", err))
		return
	}
	defer session.Close()

	logger := slog.With(slog.Int("worker", id))
	for {
		select {
		case <-s.shutdown:
			return
		default:
		}
		if ctx.Err() != nil {
			return
		}

		url, ok := q.TryGet()
		if !ok {
			return
		}

		if err := s.processURL(ctx, logger, url, session); err != nil {
			s.recordError(url, err)

			var throttled parser.ThrottledError
			if errors.As(err, &throttled) {
				logger.Error("throttled by source, stopping run",
					slog.String("url", url),
					slog.Any("error", err),
				)
				s.setFatal(err)
				return
			}

			logger.Warn("listing skipped",
				slog.String("url", url),
				slog.String("category", errorTypeLabel(err)),
				slog.Any("error", err),
			)
		}
	}
}

func (s *Scraper) processURL(ctx context.Context, logger *slog.Logger, url string, session *store.Session) error {
	start := time.Now()
	page, err := s.fetcher.Fetch(url)
	s.Metrics.ObserveFetchDuration(time.Since(start))
	if err != nil {
		s.Metrics.IncPage("error")
		return err
	}
	s.Metrics.IncPage("fetched")

	payload, err := parser.ExtractPayload(page.Body)
	if err != nil {
		return err
	}

	listing, err := parser.MapListing(url, payload)
	if err != nil {
		return err
	}

	if err := session.Insert(ctx, listing); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}

	atomic.AddInt64(&s.stored, 1)
	s.Metrics.IncStored()
	logger.Info("listing stored",
		slog.String("url", url),
		slog.String("name", listing.Name),
	)
	return nil
}

// setFatal records the first fatal error and signals all workers to stop
// taking new work. In-flight fetches finish on their own.
func (s *Scraper) setFatal(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.fatalErr == nil {
		s.fatalErr = err
	}
	s.mu.Unlock()

	s.shutdownOnce.Do(func() {
		close(s.shutdown)
	})
}

func (s *Scraper) recordError(url string, err error) {
	category := errorTypeLabel(err)
	s.Metrics.IncError(category)

	s.mu.Lock()
	s.errorsByType[category]++
	s.failedURLs = append(s.failedURLs, url)
	s.mu.Unlock()
}

func (s *Scraper) snapshotFailedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.failedURLs))
	copy(out, s.failedURLs)
	return out
}

func (s *Scraper) snapshotErrors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		out[k] = v
	}
	return out
}
