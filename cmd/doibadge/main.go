// Package main provides the doibadge CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// Global flags
var (
	humanOutput bool
	cacheFlag   string
	debugFlag   bool
	logJSON     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "doibadge",
	Short: "Resolve DOIs to moderation badges",
	Long: `doibadge resolves a DOI to a moderation badge.

It looks up bibliographic metadata in Crossref, classifies papers that have an
open PDF link (spending one classification credit each), and caches every
result in a JSON file so repeated lookups cost nothing.

All commands output JSON by default for easy integration with other tools.

Environment Variables:
  DOIBADGE_CONTACT_EMAIL  Contact address for Crossref and the classifier
  CLASSIFIER_API_KEY      Classification service API key
  CLASSIFIER_URL          Classification endpoint
  DOIBADGE_CACHE          Cache file path (default doi-cache.json)
  DOIBADGE_CREDIT_LIMIT   Total classification credits (default 100)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&cacheFlag, "cache", "", "Cache file path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs to stderr as JSON lines")
	rootCmd.Version = Version
}
