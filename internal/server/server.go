// Package server provides the HTTP API for the scraper service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joshmuccio/pitch-super-app/internal/db"
	"github.com/joshmuccio/pitch-super-app/internal/embed"
	"github.com/joshmuccio/pitch-super-app/internal/scraper"
	"github.com/joshmuccio/pitch-super-app/internal/server/ratelimit"
	"github.com/joshmuccio/pitch-super-app/internal/types"
)

// ScrapeRunner executes one scrape job and reports the outcome through the
// trace. Implementations never return an error; failure states live in the trace.
type ScrapeRunner interface {
	Scrape(ctx context.Context, req types.ScrapeRequest) ([]types.Post, *scraper.CrawlTrace)
}

// PostStore persists extracted posts. A nil store disables persistence; the
// scrape endpoints still run and report what they found.
type PostStore interface {
	UpsertPost(ctx context.Context, post types.Post, embedding []float32) error
	ListPostsByCompany(ctx context.Context, companyID string, limit int) ([]db.PostRecord, error)
}

// Server is the HTTP server for the scraper service.
type Server struct {
	runner   ScrapeRunner
	store    PostStore
	embedder embed.Embedder
	limiter  *ratelimit.Limiter
	log      zerolog.Logger

	httpServer *http.Server
}

// New creates a Server. store and embedder may be nil; the corresponding
// behavior degrades gracefully rather than failing the whole service.
func New(port int, runner ScrapeRunner, store PostStore, embedder embed.Embedder, log zerolog.Logger) *Server {
	s := &Server{
		runner:   runner,
		store:    store,
		embedder: embedder,
		// Scrape jobs hold a browser for minutes; a small burst with slow
		// refill keeps one client from monopolizing the profile directory.
		limiter: ratelimit.NewLimiter(5, 1.0/60.0),
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /scrape", s.handleScrapeInfo)
	mux.HandleFunc("POST /scrape", s.rateLimited(s.handleScrape))
	mux.HandleFunc("POST /scrape/debug", s.rateLimited(s.handleScrapeDebug))
	mux.HandleFunc("POST /embed", s.handleEmbed)
	mux.HandleFunc("GET /posts", s.handleListPosts)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		// Write timeout must outlast the scrape deadline or responses for
		// slow jobs are cut off mid-body.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withLogging logs each request with method, path, status, and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// withCORS permits cross-origin calls; the API carries no browser credentials.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimited wraps a handler with the per-client token bucket.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already written; nothing left to do but note it.
		return
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
