// Package scraper implements the LinkedIn profile activity scraping pipeline:
// session establishment, scroll-driven lazy loading, cutoff-date detection,
// and post extraction from the rendered markup.
package scraper

import "fmt"

// Stage identifies a pipeline phase. The trace keeps the furthest stage
// reached as its cursor; terminal stages describe how the job ended.
type Stage string

const (
	StageInit               Stage = "init"
	StageSession            Stage = "session"
	StageLogin              Stage = "login"
	StageMissingCredentials Stage = "missing_credentials"
	StageNavigate           Stage = "navigate"
	StageScroll             Stage = "scroll"
	StageExtract            Stage = "extract"
	StageNoArticles         Stage = "no_articles"
	StageComplete           Stage = "complete"
	StageTimeout            Stage = "timeout"
	StageException          Stage = "exception"
)

// Step is one recorded pipeline event.
type Step struct {
	Stage  Stage  `json:"stage"`
	Detail string `json:"detail"`
}

// CrawlTrace accumulates a structured record of one scrape job. It is the
// sole diagnostic channel for callers: the pipeline never raises past the
// orchestrator, so failure reasons live here. One trace per job, never shared.
type CrawlTrace struct {
	Stage         Stage    `json:"stage"`
	Steps         []Step   `json:"steps"`
	Errors        []string `json:"errors"`
	ArticlesFound int      `json:"articles_found"`
	DateFiltered  int      `json:"date_filtered"`
	Retained      int      `json:"retained"`
}

// NewCrawlTrace returns an empty trace positioned at the init stage.
func NewCrawlTrace() *CrawlTrace {
	return &CrawlTrace{Stage: StageInit}
}

// Enter advances the stage cursor and records the transition.
func (t *CrawlTrace) Enter(stage Stage, detail string) {
	t.Stage = stage
	t.Steps = append(t.Steps, Step{Stage: stage, Detail: detail})
}

// Logf records an event under the current stage without moving the cursor.
func (t *CrawlTrace) Logf(format string, args ...any) {
	t.Steps = append(t.Steps, Step{Stage: t.Stage, Detail: fmt.Sprintf(format, args...)})
}

// Errorf records a recoverable fault. The stage cursor is not moved; fatal
// faults should call Enter with a terminal stage as well.
func (t *CrawlTrace) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.Errors = append(t.Errors, msg)
	t.Steps = append(t.Steps, Step{Stage: t.Stage, Detail: "error: " + msg})
}
