package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matsen/doibadge/internal/pipeline"
	"github.com/spf13/cobra"
)

// maxLineCapacity is the largest post batch reads from a single line (1MB).
const maxLineCapacity = 1024 * 1024

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Resolve badges for a file of posts, one per line",
	Long: `Resolve badges for every line of a file.

Each non-empty line is treated as one post: its first DOI is extracted and
resolved. Lines are processed one at a time against the shared cache. Use "-"
to read from stdin.

Examples:
  doibadge batch posts.txt
  cat posts.txt | doibadge batch - --human`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

// BatchSummary is the JSON output for the batch command.
type BatchSummary struct {
	Total    int                     `json:"total"`
	Badged   int                     `json:"badged"`
	ByStatus map[pipeline.Status]int `json:"byStatus"`
	Results  []pipeline.Result       `json:"results"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			exitWithError(ExitDataError, "opening %s: %v", args[0], err)
		}
		defer f.Close()
		in = f
	}

	lines, err := readLines(in)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}

	a := newApp()
	ctx, cancel := signalContext()
	defer cancel()

	results := make([]pipeline.Result, 0, len(lines))
	for _, line := range lines {
		if ctx.Err() != nil {
			break
		}
		results = append(results, a.processor.ProcessText(ctx, line))
	}

	summary := summarize(results)
	if humanOutput {
		outputResults(results)
		fmt.Printf("\n%d posts, %d badged\n", summary.Total, summary.Badged)
		return nil
	}
	outputJSON(summary)
	return nil
}

// readLines returns the non-blank lines of r, trimmed.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineCapacity)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// summarize counts results by status.
func summarize(results []pipeline.Result) BatchSummary {
	s := BatchSummary{
		Total:    len(results),
		ByStatus: make(map[pipeline.Status]int),
		Results:  results,
	}
	for _, r := range results {
		s.ByStatus[r.Status]++
		if r.Status == pipeline.StatusBadged {
			s.Badged++
		}
	}
	return s
}
