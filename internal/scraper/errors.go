package scraper

import "fmt"

// Auth failure reasons reported by the session establisher.
const (
	AuthReasonMissingCredentials = "missing_credentials"
	AuthReasonLoginFailed        = "login_failed"
	AuthReasonChallenge          = "challenge_required"
	AuthReasonUnknownState       = "unknown_state"
)

// AuthError represents a failure to establish an authenticated session.
type AuthError struct {
	Reason  string
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth error (%s): %s: %v", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("auth error (%s): %s", e.Reason, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NavigationError represents an unrecoverable navigation failure, after both
// the activity URL and the bare profile URL have been tried.
type NavigationError struct {
	URL     string
	Message string
	Cause   error
}

func (e *NavigationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("navigation error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("navigation error for %s: %s", e.URL, e.Message)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}

// ExtractionError represents a failure to parse the rendered markup at all.
// Per-post anomalies are not errors; they are logged to the trace and skipped.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
