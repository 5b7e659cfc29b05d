package main

import (
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <doi>...",
	Short: "Resolve one or more DOIs to badges",
	Long: `Resolve DOIs to moderation badges.

Each DOI is looked up in the cache first. On a miss, metadata is fetched from
Crossref; papers with a title and a PDF link are then classified, spending one
credit. Every DOI yields a result with a status explaining why it did or did
not receive a badge. Failures never abort the remaining DOIs.

Examples:
  doibadge process 10.1038/nature12373
  doibadge process https://doi.org/10.1038/nature12373 10.1126/science.169.3946.635
  doibadge process 10.1038/nature12373 --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	a := newApp()
	ctx, cancel := signalContext()
	defer cancel()

	outputResults(a.processor.ProcessAll(ctx, args))
	return nil
}
