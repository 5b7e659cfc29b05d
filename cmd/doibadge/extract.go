package main

import (
	"io"
	"os"
	"strings"

	"github.com/matsen/doibadge/internal/doi"
	"github.com/spf13/cobra"
)

var extractPDF string

var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Print the DOI found in text or a PDF, without any lookup",
	Long: `Extract the first DOI from text or from the first pages of a PDF.

No network calls are made and the cache is not touched. Exits with code 4
when no DOI is found.

Examples:
  doibadge extract "See https://doi.org/10.1038/nature12373 for details"
  doibadge extract --pdf paper.pdf`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractPDF, "pdf", "", "Extract from a local PDF file instead of text")
}

// ExtractResult is the JSON output for the extract command.
type ExtractResult struct {
	DOI   string `json:"doi,omitempty"`
	Found bool   `json:"found"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	var (
		found string
		ok    bool
	)

	if extractPDF != "" {
		var err error
		found, ok, err = doi.ExtractFromPDF(extractPDF)
		if err != nil {
			exitWithError(ExitDataError, "reading PDF %s: %v", extractPDF, err)
		}
	} else {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitWithError(ExitDataError, "reading stdin: %v", err)
			}
			text = string(data)
		}
		found, ok = doi.Extract(text)
	}

	if humanOutput {
		if ok {
			outputHuman("%s\n", found)
		} else {
			outputHuman("no DOI found\n")
		}
	} else {
		outputJSON(ExtractResult{DOI: found, Found: ok})
	}

	if !ok {
		os.Exit(ExitNoDOI)
	}
	return nil
}
