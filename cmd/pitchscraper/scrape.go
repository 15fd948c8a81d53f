package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshmuccio/pitch-super-app/internal/config"
	"github.com/joshmuccio/pitch-super-app/internal/logger"
	"github.com/joshmuccio/pitch-super-app/internal/scraper"
	"github.com/joshmuccio/pitch-super-app/internal/types"
)

var (
	scrapeURL        string
	scrapeStartDate  string
	scrapeMaxScrolls int
	scrapeFounderID  string
	scrapeCompanyID  string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one scrape job and print the result as JSON",
	Long:  `Run a single scrape job against a LinkedIn profile without starting the server. Results are printed to stdout; nothing is persisted.`,
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "LinkedIn profile URL (required)")
	scrapeCmd.Flags().StringVar(&scrapeStartDate, "start-date", "", "Cutoff date YYYY-MM-DD (required)")
	scrapeCmd.Flags().IntVar(&scrapeMaxScrolls, "max-scrolls", 0, "Maximum scroll cycles")
	scrapeCmd.Flags().StringVar(&scrapeFounderID, "founder-id", "", "Founder correlation ID")
	scrapeCmd.Flags().StringVar(&scrapeCompanyID, "company-id", "", "Company correlation ID")
	_ = scrapeCmd.MarkFlagRequired("url")
	_ = scrapeCmd.MarkFlagRequired("start-date")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	req := types.ScrapeRequest{
		LinkedInURL: scrapeURL,
		StartDate:   scrapeStartDate,
		MaxScrolls:  scrapeMaxScrolls,
		FounderID:   scrapeFounderID,
		CompanyID:   scrapeCompanyID,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	posts, trace := scraper.New(cfg.Scraper, log).Scrape(context.Background(), req)

	out := map[string]any{
		"status":      string(trace.Stage),
		"posts_found": len(posts),
		"posts":       posts,
		"trace":       trace,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
