package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/joshmuccio/pitch-super-app/internal/config"
	"github.com/joshmuccio/pitch-super-app/internal/types"
)

// Scraper runs scrape jobs. Each job owns its own browser session, trace,
// and deadline; the only shared resource is the persistent profile
// directory, serialized below.
type Scraper struct {
	cfg config.ScraperConfig
	log zerolog.Logger

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// New creates a Scraper with the given per-job configuration.
func New(cfg config.ScraperConfig, log zerolog.Logger) *Scraper {
	return &Scraper{
		cfg:   cfg,
		log:   log,
		locks: make(map[string]*semaphore.Weighted),
	}
}

// profileLock returns the semaphore serializing jobs on one profile
// directory. Concurrent Chromium writers to a shared user-data dir corrupt it.
func (s *Scraper) profileLock(dir string) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[dir]
	if !ok {
		lock = semaphore.NewWeighted(1)
		s.locks[dir] = lock
	}
	return lock
}

// Scrape runs the full pipeline under the overall deadline and always
// returns a (posts, trace) pair. It never returns an error and never
// panics; all failure states are reported through the trace.
func (s *Scraper) Scrape(ctx context.Context, req types.ScrapeRequest) (posts []types.Post, trace *CrawlTrace) {
	jobID := uuid.New().String()
	log := s.log.With().Str("job_id", jobID).Str("profile_url", req.LinkedInURL).Logger()
	trace = NewCrawlTrace()
	posts = []types.Post{}

	defer func() {
		if r := recover(); r != nil {
			posts = []types.Post{}
			trace.Enter(StageException, fmt.Sprintf("internal fault: %v", r))
			trace.Errors = append(trace.Errors, fmt.Sprintf("internal fault: %v", r))
			log.Error().Str("stage", string(trace.Stage)).Interface("fault", r).Msg("scrape job panicked")
		}
	}()

	cutoff, err := req.CutoffDate()
	if err != nil {
		// The request boundary validates the date; reaching here means a caller skipped it.
		trace.Enter(StageException, "unvalidated request: "+err.Error())
		trace.Errors = append(trace.Errors, "invalid start_date: "+err.Error())
		return posts, trace
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.OverallTimeout)
	defer cancel()

	log.Info().Str("cutoff", req.StartDate).Int("max_scrolls", req.EffectiveMaxScrolls()).Msg("scrape job started")

	if s.cfg.ProfileDir != "" {
		lock := s.profileLock(s.cfg.ProfileDir)
		if err := lock.Acquire(ctx, 1); err != nil {
			s.recordFailure(ctx, trace, fmt.Errorf("waiting for profile directory: %w", err), log)
			return posts, trace
		}
		defer lock.Release(1)
	}

	html, err := s.runBrowser(ctx, req, cutoff, trace)
	if err != nil {
		s.recordFailure(ctx, trace, err, log)
		return posts, trace
	}

	trace.Enter(StageExtract, "extracting posts from rendered markup")
	extracted, err := ExtractPosts(html, req, trace)
	if err != nil {
		s.recordFailure(ctx, trace, err, log)
		return posts, trace
	}

	posts = extracted
	if trace.Stage == StageExtract {
		trace.Enter(StageComplete, fmt.Sprintf("retained %d of %d articles", trace.Retained, trace.ArticlesFound))
	}
	log.Info().
		Int("articles_found", trace.ArticlesFound).
		Int("date_filtered", trace.DateFiltered).
		Int("retained", trace.Retained).
		Msg("scrape job complete")
	return posts, trace
}

// runBrowser owns the browser session lifecycle. The contexts created here
// are cancelled on every exit path, so the browser is released even when the
// overall deadline interrupts the pipeline mid-sequence.
func (s *Scraper) runBrowser(ctx context.Context, req types.ScrapeRequest, cutoff time.Time, trace *CrawlTrace) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(s.cfg)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, applyStealth()); err != nil {
		return "", fmt.Errorf("failed to start browser: %w", err)
	}

	if err := s.establishSession(browserCtx, trace); err != nil {
		return "", err
	}
	if err := s.navigateToActivity(browserCtx, req.LinkedInURL, trace); err != nil {
		return "", err
	}

	s.scrollUntilCutoff(browserCtx, req.EffectiveMaxScrolls(), cutoff, trace)

	var html string
	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to capture rendered markup: %w", err)
	}
	return html, nil
}

// recordFailure converts a fatal pipeline error into the terminal trace
// shape. The overall deadline gets its dedicated stage; other fatal errors
// leave the cursor at the furthest stage reached.
func (s *Scraper) recordFailure(ctx context.Context, trace *CrawlTrace, err error, log zerolog.Logger) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		trace.Enter(StageTimeout, "overall deadline exceeded")
		trace.Errors = append(trace.Errors, "scrape aborted: overall deadline exceeded")
		log.Warn().Str("stage", string(trace.Stage)).Msg("scrape job timed out")
		return
	}
	trace.Errors = append(trace.Errors, err.Error())
	log.Warn().Str("stage", string(trace.Stage)).Err(err).Msg("scrape job failed")
}
