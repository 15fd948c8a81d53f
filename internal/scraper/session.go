package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	loginURL     = "https://www.linkedin.com/login"
	feedProbeURL = "https://www.linkedin.com/feed/"
)

// keystrokeDelay paces login form input. Instant form fills are one of the
// automated-submission fingerprints the target site checks for.
const keystrokeDelay = 60 * time.Millisecond

// formSettle is the pause between finishing input and submitting.
const formSettle = 500 * time.Millisecond

// establishSession probes the persistent session and logs in when required.
// The probe-first order is an optimization: a still-valid session cookie in
// the profile directory lets repeated jobs skip the login form entirely.
func (s *Scraper) establishSession(ctx context.Context, trace *CrawlTrace) error {
	trace.Enter(StageSession, "probing authentication state")

	var location string
	err := chromedp.Run(ctx,
		chromedp.Navigate(feedProbeURL),
		chromedp.Sleep(s.cfg.NavigateSettle),
		chromedp.Location(&location),
	)
	if err != nil {
		return &AuthError{Reason: AuthReasonUnknownState, Message: "auth probe navigation failed", Cause: err}
	}
	trace.Logf("probe landed on %s", location)

	needLogin, err := s.resolveAuthState(location, trace)
	if err != nil {
		return err
	}
	if !needLogin {
		return nil
	}

	trace.Enter(StageLogin, "submitting login form")
	err = chromedp.Run(ctx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible("#username", chromedp.ByQuery),
		typeSlowly("#username", s.cfg.Email),
		typeSlowly("#password", s.cfg.Password),
		chromedp.Sleep(formSettle),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(s.cfg.NavigateSettle),
		chromedp.Location(&location),
	)
	if err != nil {
		return &AuthError{Reason: AuthReasonUnknownState, Message: "login form submission failed", Cause: err}
	}

	reason, ok := classifyLoginOutcome(location)
	if !ok {
		trace.Errorf("login did not authenticate: %s (landed on %s)", reason, location)
		return &AuthError{Reason: reason, Message: "landed on " + location}
	}
	trace.Logf("login succeeded, landed on %s", location)
	return nil
}

// resolveAuthState decides what the probed location requires: nothing (the
// persistent session is still authenticated), a login attempt, or a terminal
// missing_credentials failure when login is needed but no credentials are
// configured.
func (s *Scraper) resolveAuthState(location string, trace *CrawlTrace) (needLogin bool, err error) {
	if !locationRequiresLogin(location) {
		trace.Logf("persistent session still authenticated, login skipped")
		return false, nil
	}

	if !s.cfg.HasCredentials() {
		trace.Enter(StageMissingCredentials, "login required but credentials are not configured")
		return false, &AuthError{
			Reason:  AuthReasonMissingCredentials,
			Message: "LINKEDIN_EMAIL and LINKEDIN_PASSWORD must both be set",
		}
	}
	return true, nil
}

// typeSlowly enters text into a form field with human-paced keystrokes.
func typeSlowly(selector, text string) chromedp.Tasks {
	tasks := chromedp.Tasks{chromedp.Click(selector, chromedp.ByQuery)}
	for _, r := range text {
		tasks = append(tasks,
			chromedp.SendKeys(selector, string(r), chromedp.ByQuery),
			chromedp.Sleep(keystrokeDelay),
		)
	}
	return tasks
}

// locationRequiresLogin reports whether the probed location is a login,
// challenge, or auth-wall path rather than authenticated content.
func locationRequiresLogin(location string) bool {
	for _, marker := range []string{"/login", "/uas/", "/checkpoint", "/authwall"} {
		if strings.Contains(location, marker) {
			return true
		}
	}
	return false
}

// classifyLoginOutcome maps the post-submit location to a result. Challenge
// and still-on-login are distinct failure reasons; anything unrecognized
// keeps the raw location for diagnosis.
func classifyLoginOutcome(location string) (reason string, ok bool) {
	lower := strings.ToLower(location)
	switch {
	case strings.Contains(lower, "/checkpoint"),
		strings.Contains(lower, "/challenge"),
		strings.Contains(lower, "captcha"):
		return AuthReasonChallenge, false
	case strings.Contains(lower, "/login"), strings.Contains(lower, "/uas/"):
		return AuthReasonLoginFailed, false
	case strings.Contains(lower, "linkedin.com"):
		return "", true
	default:
		return AuthReasonUnknownState, false
	}
}
