// Package types provides type definitions for structured data used throughout the scraper service.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultMaxScrolls bounds the scroll loop when the caller does not set a limit.
const DefaultMaxScrolls = 10

// MinPostTextLength is the minimum normalized text length for a post to be retained.
// Shorter bodies are boilerplate containers, not real posts.
const MinPostTextLength = 10

// PostedAtUnknown is the sentinel value when no timestamp could be recovered.
const PostedAtUnknown = "unknown"

// Time confidence levels for a post's posted_at value.
const (
	TimeConfidenceAbsolute = "absolute"
	TimeConfidenceRelative = "relative"
	TimeConfidenceUnknown  = "unknown"
)

// ScrapeRequest represents one scrape job. It is immutable for the duration
// of the job; founder and company IDs are pass-through correlation values.
type ScrapeRequest struct {
	LinkedInURL string `json:"linkedin_url" validate:"required,url"`
	FounderID   string `json:"founder_id,omitempty"`
	CompanyID   string `json:"company_id,omitempty"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	MaxScrolls  int    `json:"max_scrolls,omitempty" validate:"omitempty,min=1"`
}

// Validate validates the ScrapeRequest using the validator.
func (r *ScrapeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// CutoffDate parses the start_date field. Validate must have been called
// first; a parse failure here indicates a programming error.
func (r *ScrapeRequest) CutoffDate() (time.Time, error) {
	return time.Parse("2006-01-02", r.StartDate)
}

// EffectiveMaxScrolls returns the scroll bound, applying the default when unset.
func (r *ScrapeRequest) EffectiveMaxScrolls() int {
	if r.MaxScrolls <= 0 {
		return DefaultMaxScrolls
	}
	return r.MaxScrolls
}

// Post is one extracted LinkedIn post. PostedAt is either an ISO8601
// timestamp, a coarse relative phrase such as "3d ago", or PostedAtUnknown;
// TimeConfidence says which.
type Post struct {
	FounderID      string `json:"founder_id,omitempty"`
	CompanyID      string `json:"company_id,omitempty"`
	PostText       string `json:"post_text"`
	PostURL        string `json:"post_url,omitempty"`
	PostedAt       string `json:"posted_at"`
	TimeConfidence string `json:"time_confidence"`
}

// EmbedRequest represents the request body for /embed.
type EmbedRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// Validate validates the EmbedRequest using the validator.
func (r *EmbedRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
