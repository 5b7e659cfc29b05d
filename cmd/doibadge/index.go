package main

import (
	"github.com/matsen/doibadge/internal/badge"
	"github.com/matsen/doibadge/internal/index"
	"github.com/matsen/doibadge/internal/paper"
	"github.com/spf13/cobra"
)

var (
	queryLabel        string
	queryBadge        string
	queryUnclassified bool
	queryCounts       bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the SQLite query index",
	Long: `The query index is a SQLite copy of the JSON cache used for queries.
The JSON cache stays the source of truth; rebuild the index after processing.`,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query index from the cache",
	Args:  cobra.NoArgs,
	RunE:  runIndexRebuild,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query cached results by label or badge",
	Long: `Query the index for cached DOIs.

Examples:
  doibadge query --badge paradigm-shift
  doibadge query --label "Model Drift" --human
  doibadge query --unclassified
  doibadge query --counts`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)

	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryLabel, "label", "", "Classification label to match exactly")
	queryCmd.Flags().StringVar(&queryBadge, "badge", "", "Badge identifier to match")
	queryCmd.Flags().BoolVar(&queryUnclassified, "unclassified", false, "List entries without a classification")
	queryCmd.Flags().BoolVar(&queryCounts, "counts", false, "Count entries per label")
}

// RebuildResult is the JSON output for index rebuild.
type RebuildResult struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Entries int    `json:"entries"`
}

func runIndexRebuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := openStore(cfg, newLogger(cfg))

	db, err := index.Open(cfg.IndexPath)
	if err != nil {
		exitWithError(ExitError, "opening index: %v", err)
	}
	defer db.Close()

	n, err := db.Rebuild(store.Entries())
	if err != nil {
		exitWithError(ExitError, "rebuilding index: %v", err)
	}

	if humanOutput {
		outputHuman("Indexed %d entries into %s\n", n, cfg.IndexPath)
		return nil
	}
	outputJSON(RebuildResult{Status: "rebuilt", Path: cfg.IndexPath, Entries: n})
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	set := 0
	for _, on := range []bool{queryLabel != "", queryBadge != "", queryUnclassified, queryCounts} {
		if on {
			set++
		}
	}
	if set != 1 {
		exitWithError(ExitError, "specify exactly one of --label, --badge, --unclassified, --counts")
	}
	if queryBadge != "" && !badge.IsBadge(queryBadge) {
		exitWithError(ExitError, "unknown badge %q", queryBadge)
	}

	cfg := mustLoadConfig()
	db, err := index.Open(cfg.IndexPath)
	if err != nil {
		exitWithError(ExitError, "opening index: %v", err)
	}
	defer db.Close()

	if queryCounts {
		counts, err := db.LabelCounts()
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			for _, l := range badge.Labels() {
				outputHuman("%-18s %d\n", l, counts[l])
				delete(counts, l)
			}
			for l, n := range counts {
				outputHuman("%-18s %d (unmapped)\n", l, n)
			}
			return nil
		}
		outputJSON(counts)
		return nil
	}

	var entries []paper.Entry
	switch {
	case queryLabel != "":
		entries, err = db.ByLabel(queryLabel)
	case queryBadge != "":
		entries, err = db.ByBadge(queryBadge)
	default:
		entries, err = db.Unclassified()
	}
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if len(entries) == 0 {
			outputHuman("No matching entries. Run 'doibadge index rebuild' after processing.\n")
		}
		for _, e := range entries {
			outputHuman("%s  %s\n", e.DOI, truncateString(e.Metadata.Title, TitleMaxLen))
		}
		return nil
	}
	if entries == nil {
		entries = []paper.Entry{}
	}
	outputJSON(entries)
	return nil
}
