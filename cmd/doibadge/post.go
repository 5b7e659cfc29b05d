package main

import (
	"io"
	"os"
	"strings"

	"github.com/matsen/doibadge/internal/pipeline"
	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post [text]",
	Short: "Find the DOI in a post and resolve it to a badge",
	Long: `Extract the first DOI from a post and resolve it to a badge.

The text is taken from the arguments, or from stdin when none are given.
Resolver links (https://doi.org/...) take priority over bare DOIs.

Examples:
  doibadge post "New paper out: https://doi.org/10.1038/nature12373"
  echo "see 10.1038/nature12373" | doibadge post`,
	RunE: runPost,
}

func init() {
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitWithError(ExitDataError, "reading stdin: %v", err)
		}
		text = string(data)
	}

	a := newApp()
	ctx, cancel := signalContext()
	defer cancel()

	outputResults([]pipeline.Result{a.processor.ProcessText(ctx, text)})
	return nil
}
