package main

import (
	"time"

	"github.com/matsen/doibadge/internal/cache"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and classification credit usage",
	Long: `Show how many DOIs are cached, how many are classified, and how many
classification credits have been spent against the configured limit.

Examples:
  doibadge stats
  doibadge stats --human`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// StatsResult is the JSON output for the stats command.
type StatsResult struct {
	cache.Stats
	CachePath   string    `json:"cachePath"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := openStore(cfg, newLogger(cfg))

	result := StatsResult{
		Stats:       store.Stats(),
		CachePath:   store.Path(),
		LastUpdated: store.LastUpdated(),
	}

	if humanOutput {
		outputHuman("Cache:        %s\n", result.CachePath)
		outputHuman("Entries:      %d (%d classified)\n", result.TotalEntries, result.Classified)
		outputHuman("Credits:      %d / %d used, %d remaining\n", result.CreditsUsed, result.CreditLimit, result.CreditsRemaining)
		outputHuman("Last updated: %s\n", result.LastUpdated.Format(time.RFC3339))
		return nil
	}
	outputJSON(result)
	return nil
}
