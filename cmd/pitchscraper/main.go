// Package main provides the entry point for the LinkedIn activity scraper service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pitchscraper",
	Short: "LinkedIn activity scraper service",
	Long:  "Scrapes recent activity from LinkedIn profiles, extracts posts newer than a cutoff date, and stores them with vector embeddings via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
