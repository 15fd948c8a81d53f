package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// activityPath is the profile sub-path listing chronological posts.
const activityPath = "/recent-activity/all/"

const scrollByPageJS = `window.scrollBy(0, window.innerHeight)`

// collectDatetimesJS gathers every timestamp element's machine-readable
// datetime attribute in current render order.
const collectDatetimesJS = `Array.from(document.querySelectorAll('time')).map(e => e.getAttribute('datetime') || '')`

// activityURL builds the canonical recent-activity URL for a profile.
func activityURL(profileURL string) string {
	return strings.TrimRight(profileURL, "/") + activityPath
}

// navigateToActivity brings the browser to the profile's activity view. The
// activity sub-path is tried first; on failure the bare profile URL is the
// single fallback before navigation is fatal for the job.
func (s *Scraper) navigateToActivity(ctx context.Context, profileURL string, trace *CrawlTrace) error {
	target := activityURL(profileURL)
	trace.Enter(StageNavigate, "navigating to "+target)

	if err := s.navigate(ctx, target); err != nil {
		trace.Errorf("activity navigation failed: %v", err)
		trace.Logf("falling back to bare profile URL %s", profileURL)
		if err := s.navigate(ctx, profileURL); err != nil {
			return &NavigationError{URL: profileURL, Message: "fallback navigation failed", Cause: err}
		}
	}

	// Client-side rendering needs a settle period before anything is in the DOM.
	if err := chromedp.Run(ctx, chromedp.Sleep(s.cfg.NavigateSettle)); err != nil {
		return err
	}
	return nil
}

func (s *Scraper) navigate(ctx context.Context, target string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigateTimeout)
	defer cancel()
	return chromedp.Run(navCtx, chromedp.Navigate(target))
}

// scrollUntilCutoff performs up to maxScrolls scroll-and-wait cycles,
// stopping early once content older than the cutoff has rendered or the
// saturation limit is reached. Per-cycle failures are recoverable: they are
// recorded and the loop moves to the next cycle.
func (s *Scraper) scrollUntilCutoff(ctx context.Context, maxScrolls int, cutoff time.Time, trace *CrawlTrace) {
	trace.Enter(StageScroll, fmt.Sprintf("scrolling up to %d cycles", maxScrolls))

	for cycle := 1; cycle <= maxScrolls; cycle++ {
		if ctx.Err() != nil {
			return
		}

		err := chromedp.Run(ctx,
			chromedp.Evaluate(scrollByPageJS, nil),
			chromedp.Sleep(s.cfg.ScrollSettle),
		)
		if err != nil {
			trace.Errorf("cycle %d: scroll failed: %v", cycle, err)
			continue
		}

		selector, err := s.waitForPosts(ctx)
		if err != nil {
			trace.Errorf("cycle %d: no post selector appeared: %v", cycle, err)
			continue
		}
		trace.Logf("cycle %d: selector %q present", cycle, selector)

		var datetimes []string
		if err := chromedp.Run(ctx, chromedp.Evaluate(collectDatetimesJS, &datetimes)); err != nil {
			trace.Errorf("cycle %d: timestamp collection failed: %v", cycle, err)
			continue
		}
		if oldestReached(datetimes, cutoff) {
			trace.Logf("cycle %d: content older than cutoff rendered, stopping", cycle)
			return
		}

		var visible int
		if err := chromedp.Run(ctx, chromedp.Evaluate(countContainersJS(), &visible)); err == nil && visible >= s.cfg.SaturationLimit {
			trace.Logf("cycle %d: %d articles visible, saturation reached", cycle, visible)
			return
		}
	}

	trace.Logf("scroll bound exhausted after %d cycles", maxScrolls)
}

// waitForPosts waits for the first post-bearing selector from the candidate
// list to appear, splitting the selector-wait budget across candidates.
func (s *Scraper) waitForPosts(ctx context.Context) (string, error) {
	perSelector := s.cfg.SelectorWait / time.Duration(len(containerSelectors))
	for _, selector := range containerSelectors {
		waitCtx, cancel := context.WithTimeout(ctx, perSelector)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
		cancel()
		if err == nil {
			return selector, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("no post container selector became ready")
}

func countContainersJS() string {
	return fmt.Sprintf(`document.querySelectorAll(%q).length`, strings.Join(containerSelectors, ", "))
}

// oldestReached reports whether any rendered timestamp parses successfully
// and is strictly older than the cutoff. Unparsable or absent values are
// ignored, never treated as a match.
//
// This check is deliberately eager: a single old post stops the crawl, which
// assumes the feed renders in reverse-chronological order. That is a property
// of the source, not something verified here; a layout change could silently
// truncate valid recent content.
func oldestReached(datetimes []string, cutoff time.Time) bool {
	for _, value := range datetimes {
		if value == "" {
			continue
		}
		t, err := parseAbsoluteTime(value)
		if err != nil {
			continue
		}
		if t.Before(cutoff) {
			return true
		}
	}
	return false
}
