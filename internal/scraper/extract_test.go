package scraper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshmuccio/pitch-super-app/internal/types"
)

func testRequest() types.ScrapeRequest {
	return types.ScrapeRequest{
		LinkedInURL: "https://www.linkedin.com/in/founder",
		FounderID:   "f-1",
		CompanyID:   "c-1",
		StartDate:   "2024-01-01",
	}
}

func articleHTML(datetime, text, href string) string {
	timeElem := ""
	if datetime != "" {
		timeElem = fmt.Sprintf(`<time datetime="%s">posted</time>`, datetime)
	}
	anchor := ""
	if href != "" {
		anchor = fmt.Sprintf(`<a href="%s">view</a>`, href)
	}
	return fmt.Sprintf(`<article>%s<p>%s</p>%s</article>`, timeElem, text, anchor)
}

func TestExtractPosts_NoContainers(t *testing.T) {
	trace := NewCrawlTrace()
	posts, err := ExtractPosts(`<html><body><div>nothing here</div></body></html>`, testRequest(), trace)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, StageNoArticles, trace.Stage)
}

func TestExtractPosts_RetainsPostAfterCutoff(t *testing.T) {
	html := articleHTML("2024-06-01T00:00:00", "We just closed our seed round, thrilled to share the news.", "")
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "2024-06-01T00:00:00Z", posts[0].PostedAt)
	assert.Equal(t, types.TimeConfidenceAbsolute, posts[0].TimeConfidence)
	assert.Equal(t, "f-1", posts[0].FounderID)
	assert.Equal(t, "c-1", posts[0].CompanyID)
	assert.Equal(t, 1, trace.ArticlesFound)
	assert.Equal(t, 1, trace.Retained)
	assert.Equal(t, 0, trace.DateFiltered)
}

func TestExtractPosts_DropsPostBeforeCutoff(t *testing.T) {
	html := articleHTML("2022-01-01T00:00:00", "An older announcement from a couple of years back.", "")
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, 1, trace.DateFiltered)
	assert.Equal(t, 0, trace.Retained)
}

func TestExtractPosts_MalformedTimestampSkipped(t *testing.T) {
	html := articleHTML("last tuesday", "A post whose timestamp attribute is garbage.", "")
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	assert.Empty(t, posts)
	require.NotEmpty(t, trace.Errors)
	assert.Contains(t, trace.Errors[0], "malformed timestamp")
}

func TestExtractPosts_RelativeTimeFallback(t *testing.T) {
	html := `<article><p>Excited to announce our new product line! 3d ago</p></article>`
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "3d ago", posts[0].PostedAt)
	assert.Equal(t, types.TimeConfidenceRelative, posts[0].TimeConfidence)
}

func TestExtractPosts_UnknownTimestampSentinel(t *testing.T) {
	html := `<article><p>No timestamp anywhere in this container at all.</p></article>`
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, types.PostedAtUnknown, posts[0].PostedAt)
	assert.Equal(t, types.TimeConfidenceUnknown, posts[0].TimeConfidence)
}

func TestExtractPosts_ShortTextDiscarded(t *testing.T) {
	html := articleHTML("2024-06-01T00:00:00", "hi", "")
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, 1, trace.ArticlesFound)
}

func TestExtractPosts_PermalinkStripsTracking(t *testing.T) {
	html := articleHTML("2024-06-01T00:00:00",
		"Big milestone for the team this quarter, read the whole story.",
		"https://www.linkedin.com/feed/update/urn:li:activity:123?utm_source=share&tracking=abc")
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://www.linkedin.com/feed/update/urn:li:activity:123", posts[0].PostURL)
	assert.NotContains(t, posts[0].PostURL, "?")
}

func TestExtractPosts_RelativePermalinkRebased(t *testing.T) {
	html := articleHTML("2024-06-01T00:00:00",
		"Announcing our partnership with a wonderful team of builders.",
		"/feed/update/urn:li:activity:456?refId=xyz")
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://www.linkedin.com/feed/update/urn:li:activity:456", posts[0].PostURL)
}

func TestExtractPosts_NoQualifyingAnchor(t *testing.T) {
	html := articleHTML("2024-06-01T00:00:00",
		"A post with only an unrelated external link in the body.",
		"https://example.com/blog/post")
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].PostURL)
}

func TestExtractPosts_SelectorPreferenceOrder(t *testing.T) {
	// Both a v2 container and a bare article are present; only the first
	// matching selector's elements should be extracted.
	html := `
	<div class="feed-shared-update-v2">
		<time datetime="2024-06-01T00:00:00">t</time>
		<p>Post from the modern markup variant with plenty of text.</p>
	</div>
	<article>
		<time datetime="2024-07-01T00:00:00">t</time>
		<p>Post from the legacy markup variant that should be ignored.</p>
	</article>`
	trace := NewCrawlTrace()

	posts, err := ExtractPosts(html, testRequest(), trace)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Contains(t, posts[0].PostText, "modern markup variant")
	assert.Equal(t, 1, trace.ArticlesFound)
}

func TestExtractPosts_Idempotent(t *testing.T) {
	html := strings.Join([]string{
		articleHTML("2024-06-01T00:00:00", "First announcement with enough text to retain.", "/feed/update/urn:li:activity:1"),
		articleHTML("2024-05-01T00:00:00", "Second announcement with enough text to retain.", "/feed/update/urn:li:activity:2"),
		articleHTML("2022-05-01T00:00:00", "Stale announcement that gets date filtered away.", ""),
	}, "\n")

	first, err := ExtractPosts(html, testRequest(), NewCrawlTrace())
	require.NoError(t, err)
	second, err := ExtractPosts(html, testRequest(), NewCrawlTrace())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Contains(t, first[0].PostText, "First")
	assert.Contains(t, first[1].PostText, "Second")
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello   world  ", "hello world"},
		{"line\none\n\nline two", "line one line two"},
		{"tabs\tand\t\tspaces", "tabs and spaces"},
		{"", ""},
		{"   \n\t  ", ""},
	}
	for _, tt := range tests {
		got := normalizeWhitespace(tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotContains(t, got, "  ")
		assert.Equal(t, strings.TrimSpace(got), got)
	}
}
