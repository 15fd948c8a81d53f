package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshmuccio/pitch-super-app/internal/config"
	"github.com/joshmuccio/pitch-super-app/internal/types"
)

func testScraperConfig() config.ScraperConfig {
	return config.ScraperConfig{
		Email:           "founder@example.com",
		Password:        "secret",
		Headless:        true,
		OverallTimeout:  120 * time.Second,
		NavigateTimeout: 30 * time.Second,
		NavigateSettle:  time.Millisecond,
		SelectorWait:    30 * time.Millisecond,
		ScrollSettle:    time.Millisecond,
		SaturationLimit: 200,
	}
}

func TestScrape_UnvalidatedRequest(t *testing.T) {
	s := New(testScraperConfig(), zerolog.Nop())
	posts, trace := s.Scrape(context.Background(), types.ScrapeRequest{
		LinkedInURL: "https://www.linkedin.com/in/founder",
		StartDate:   "not-a-date",
	})

	assert.Empty(t, posts)
	assert.Equal(t, StageException, trace.Stage)
	require.NotEmpty(t, trace.Errors)
	assert.Contains(t, trace.Errors[0], "invalid start_date")
}

func TestScrape_DeadlineExceeded(t *testing.T) {
	cfg := testScraperConfig()
	cfg.OverallTimeout = time.Nanosecond
	s := New(cfg, zerolog.Nop())

	posts, trace := s.Scrape(context.Background(), types.ScrapeRequest{
		LinkedInURL: "https://www.linkedin.com/in/founder",
		StartDate:   "2024-01-01",
	})

	assert.Empty(t, posts)
	assert.Equal(t, StageTimeout, trace.Stage)
	require.NotEmpty(t, trace.Errors)
	assert.Contains(t, trace.Errors[len(trace.Errors)-1], "deadline")
}

func TestScrape_AlwaysReturnsTrace(t *testing.T) {
	cfg := testScraperConfig()
	cfg.OverallTimeout = time.Nanosecond
	s := New(cfg, zerolog.Nop())

	_, trace := s.Scrape(context.Background(), types.ScrapeRequest{
		LinkedInURL: "https://www.linkedin.com/in/founder",
		StartDate:   "2024-01-01",
	})
	require.NotNil(t, trace)
}

func TestProfileLock_SamePerDirectory(t *testing.T) {
	s := New(testScraperConfig(), zerolog.Nop())
	a := s.profileLock("/tmp/profile-a")
	b := s.profileLock("/tmp/profile-a")
	c := s.profileLock("/tmp/profile-b")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestProfileLock_Serializes(t *testing.T) {
	s := New(testScraperConfig(), zerolog.Nop())
	lock := s.profileLock("/tmp/profile-serial")

	require.NoError(t, lock.Acquire(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := lock.Acquire(ctx, 1)
	assert.Error(t, err, "second acquire should block until timeout")

	lock.Release(1)
	require.NoError(t, lock.Acquire(context.Background(), 1))
	lock.Release(1)
}
