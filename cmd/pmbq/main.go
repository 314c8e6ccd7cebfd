// Package main provides the pmbq CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pmbq",
	Short: "Stage PubMed citation exports and load them into BigQuery or CSV",
	Long: `pmbq normalizes PubMed efetch XML exports into flat relations,
stages each file in its own embedded SQLite database, and delivers the
result either as CSV files or as BigQuery tables.

Files are processed independently; with file-backed staging they run in
parallel, and each file's two destination tables upload concurrently.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present (for GOOGLE_APPLICATION_CREDENTIALS etc.)
	_ = godotenv.Load()

	rootCmd.Version = Version
}
