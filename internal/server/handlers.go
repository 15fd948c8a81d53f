package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/joshmuccio/pitch-super-app/internal/scraper"
	"github.com/joshmuccio/pitch-super-app/internal/types"
)

// scrapeResponse is the body returned by POST /scrape. The job itself always
// completes with HTTP 200; its outcome is described by status and trace.
type scrapeResponse struct {
	Status     string              `json:"status"`
	PostsFound int                 `json:"posts_found"`
	Inserted   int                 `json:"inserted"`
	Embedded   int                 `json:"embedded"`
	Trace      *scraper.CrawlTrace `json:"trace"`
}

// debugResponse is the body returned by POST /scrape/debug.
type debugResponse struct {
	Status     string              `json:"status"`
	PostsFound int                 `json:"posts_found"`
	Sample     []types.Post        `json:"sample"`
	Trace      *scraper.CrawlTrace `json:"trace"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "not_configured"
	if s.store != nil {
		database = "configured"
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": database,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"service": "pitch-super-app scraper",
		"endpoints": []string{
			"GET /health",
			"GET /scrape",
			"POST /scrape",
			"POST /scrape/debug",
			"POST /embed",
			"GET /posts",
		},
	})
}

func (s *Server) handleScrapeInfo(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"usage": "POST /scrape with a JSON body",
		"body": map[string]string{
			"linkedin_url": "required, profile URL",
			"start_date":   "required, YYYY-MM-DD; posts older than this stop the crawl",
			"founder_id":   "optional correlation ID",
			"company_id":   "optional correlation ID",
			"max_scrolls":  "optional, default " + strconv.Itoa(types.DefaultMaxScrolls),
		},
	})
}

// handleScrape runs a scrape job synchronously and persists retained posts.
// Embedding and storage failures are per-post: one bad row never discards
// the rest of a job's output.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScrapeRequest(w, r)
	if !ok {
		return
	}

	posts, trace := s.runner.Scrape(r.Context(), req)

	inserted, embedded := 0, 0
	if s.store != nil {
		for _, post := range posts {
			var vector []float32
			if s.embedder != nil {
				v, err := s.embedder.EmbedText(r.Context(), post.PostText)
				if err != nil {
					s.log.Warn().Err(err).Str("post_url", post.PostURL).Msg("embedding failed, storing without vector")
				} else {
					vector = v
					embedded++
				}
			}
			if err := s.store.UpsertPost(r.Context(), post, vector); err != nil {
				s.log.Error().Err(err).Str("post_url", post.PostURL).Msg("failed to store post")
				continue
			}
			inserted++
		}
	}

	jsonResponse(w, http.StatusOK, scrapeResponse{
		Status:     string(trace.Stage),
		PostsFound: len(posts),
		Inserted:   inserted,
		Embedded:   embedded,
		Trace:      trace,
	})
}

// handleScrapeDebug runs a scrape job and returns a post sample plus the full
// trace without touching the database. Used to inspect extraction against
// live markup before committing rows.
func (s *Server) handleScrapeDebug(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScrapeRequest(w, r)
	if !ok {
		return
	}

	posts, trace := s.runner.Scrape(r.Context(), req)

	sample := posts
	if len(sample) > 3 {
		sample = sample[:3]
	}

	jsonResponse(w, http.StatusOK, debugResponse{
		Status:     string(trace.Stage),
		PostsFound: len(posts),
		Sample:     sample,
		Trace:      trace,
	})
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	if s.embedder == nil {
		errorResponse(w, http.StatusServiceUnavailable, "embedding is not configured")
		return
	}

	var req types.EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	vector, err := s.embedder.EmbedText(r.Context(), req.Text)
	if err != nil {
		s.log.Error().Err(err).Msg("embedding request failed")
		errorResponse(w, http.StatusBadGateway, "failed to generate embedding")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"embedding":  vector,
		"dimensions": len(vector),
	})
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		errorResponse(w, http.StatusServiceUnavailable, "database is not configured")
		return
	}

	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		errorResponse(w, http.StatusBadRequest, "company_id query parameter is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := s.store.ListPostsByCompany(r.Context(), companyID, limit)
	if err != nil {
		s.log.Error().Err(err).Str("company_id", companyID).Msg("failed to list posts")
		errorResponse(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"company_id": companyID,
		"count":      len(posts),
		"posts":      posts,
	})
}

// decodeScrapeRequest parses and validates the scrape body, writing the
// error response itself on failure.
func decodeScrapeRequest(w http.ResponseWriter, r *http.Request) (types.ScrapeRequest, bool) {
	var req types.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request: linkedin_url must be a URL and start_date must be YYYY-MM-DD")
		return req, false
	}
	return req, true
}
