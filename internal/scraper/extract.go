package scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/joshmuccio/pitch-super-app/internal/types"
)

// linkedInBase rebases relative permalinks found in the markup.
const linkedInBase = "https://www.linkedin.com"

// feedUpdateFragment identifies post permalink anchors.
const feedUpdateFragment = "/feed/update"

// containerSelectors lists post container candidates across LinkedIn markup
// versions, newest first. The first selector with any matches is used for the
// whole page; variants are never mixed within one extraction pass.
var containerSelectors = []string{
	"div.feed-shared-update-v2",
	"li.profile-creator-shared-feed-update__container",
	"article",
}

// ExtractPosts parses the final rendered markup into post records. Per-post
// anomalies (malformed timestamps, short text) are logged to the trace and
// skipped; the only error returned is a failure to parse the HTML at all.
func ExtractPosts(html string, req types.ScrapeRequest, trace *CrawlTrace) ([]types.Post, error) {
	cutoff, err := req.CutoffDate()
	if err != nil {
		return nil, &ExtractionError{Message: "invalid cutoff date", Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{Message: "failed to parse HTML", Cause: err}
	}

	var containers *goquery.Selection
	for _, selector := range containerSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			trace.Logf("container selector %q matched %d elements", selector, sel.Length())
			containers = sel
			break
		}
	}
	if containers == nil {
		trace.Enter(StageNoArticles, "no post containers found in rendered markup")
		return []types.Post{}, nil
	}

	trace.ArticlesFound = containers.Length()

	posts := make([]types.Post, 0, containers.Length())
	containers.Each(func(i int, sel *goquery.Selection) {
		post, ok := extractPost(i, sel, req, cutoff, trace)
		if ok {
			posts = append(posts, post)
		}
	})

	trace.Retained = len(posts)
	return posts, nil
}

// extractPost builds a single post record from one container element.
func extractPost(i int, sel *goquery.Selection, req types.ScrapeRequest, cutoff time.Time, trace *CrawlTrace) (types.Post, bool) {
	postedAt, confidence, ok := resolveTimestamp(i, sel, cutoff, trace)
	if !ok {
		return types.Post{}, false
	}

	text := normalizeWhitespace(sel.Text())
	if len(text) <= types.MinPostTextLength {
		trace.Logf("article %d: text below minimum length (%d chars), skipped", i, len(text))
		return types.Post{}, false
	}

	return types.Post{
		FounderID:      req.FounderID,
		CompanyID:      req.CompanyID,
		PostText:       text,
		PostURL:        extractPermalink(sel),
		PostedAt:       postedAt,
		TimeConfidence: confidence,
	}, true
}

// resolveTimestamp walks the ordered timestamp fallback chain: direct child
// time element, any descendant time element, then relative-time heuristics
// over the container text. A parseable absolute timestamp older than the
// cutoff drops the post; relative phrases are exempt from the cutoff since
// they cannot be compared without a reference "now".
func resolveTimestamp(i int, sel *goquery.Selection, cutoff time.Time, trace *CrawlTrace) (string, string, bool) {
	attr := ""
	if v, ok := sel.ChildrenFiltered("time[datetime]").First().Attr("datetime"); ok {
		attr = v
	} else if v, ok := sel.Find("time[datetime]").First().Attr("datetime"); ok {
		attr = v
	}

	if attr != "" {
		posted, err := parseAbsoluteTime(attr)
		if err != nil {
			trace.Errorf("article %d: malformed timestamp %q, skipped", i, attr)
			return "", "", false
		}
		if posted.Before(cutoff) {
			trace.DateFiltered++
			trace.Logf("article %d: posted %s before cutoff, dropped", i, posted.Format("2006-01-02"))
			return "", "", false
		}
		return posted.Format("2006-01-02T15:04:05Z07:00"), types.TimeConfidenceAbsolute, true
	}

	if phrase, ok := findRelativeTime(sel.Text()); ok {
		trace.Logf("article %d: no absolute timestamp, using relative phrase %q", i, phrase)
		return phrase, types.TimeConfidenceRelative, true
	}

	trace.Logf("article %d: no timestamp found, keeping with unknown sentinel", i)
	return types.PostedAtUnknown, types.TimeConfidenceUnknown, true
}

// extractPermalink returns the canonical post URL: the first feed-update
// anchor with tracking parameters stripped, rebased to an absolute URL.
// Empty when no qualifying anchor exists.
func extractPermalink(sel *goquery.Selection) string {
	href, ok := sel.Find(`a[href*="` + feedUpdateFragment + `"]`).First().Attr("href")
	if !ok || href == "" {
		return ""
	}

	// Tracking query parameters are stripped by truncating at the first '?'.
	if idx := strings.Index(href, "?"); idx >= 0 {
		href = href[:idx]
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if !parsed.IsAbs() {
		base, _ := url.Parse(linkedInBase)
		parsed = base.ResolveReference(parsed)
	}
	return parsed.String()
}

// normalizeWhitespace collapses all whitespace runs, including newlines, to
// single spaces and trims the result.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
