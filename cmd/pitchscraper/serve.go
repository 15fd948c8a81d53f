package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshmuccio/pitch-super-app/internal/config"
	"github.com/joshmuccio/pitch-super-app/internal/db"
	"github.com/joshmuccio/pitch-super-app/internal/embed"
	"github.com/joshmuccio/pitch-super-app/internal/logger"
	"github.com/joshmuccio/pitch-super-app/internal/scraper"
	"github.com/joshmuccio/pitch-super-app/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running scrape jobs.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx := context.Background()

	// The database is optional: without it scrape jobs still run and report
	// results, they just are not persisted.
	var store server.PostStore
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		store = database
		log.Info().Msg("database connected")
	} else {
		log.Warn().Msg("DATABASE_URL not set, posts will not be persisted")
	}

	var embedder embed.Embedder
	if cfg.GeminiAPIKey != "" {
		client, err := embed.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create embedding client: %w", err)
		}
		defer client.Close()
		embedder = client
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, posts will be stored without embeddings")
	}

	runner := scraper.New(cfg.Scraper, log)
	srv := server.New(cfg.Port, runner, store, embedder, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
