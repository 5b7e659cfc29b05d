package main

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/matsen/doibadge/internal/pipeline"
)

// TitleMaxLen bounds titles in human-readable output.
const TitleMaxLen = 60

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// outputResults prints pipeline results as JSON or one line per result.
func outputResults(results []pipeline.Result) {
	if !humanOutput {
		outputJSON(results)
		return
	}
	for _, r := range results {
		outputHuman("%s\n", formatResultHuman(r))
	}
}

// formatResultHuman renders a result as a single line.
func formatResultHuman(r pipeline.Result) string {
	doi := r.DOI
	if doi == "" {
		doi = "-"
	}

	var line string
	switch r.Status {
	case pipeline.StatusBadged:
		line = fmt.Sprintf("%s  %s (%s)", doi, r.Badge, r.Label)
	case pipeline.StatusUnmapped:
		line = fmt.Sprintf("%s  no badge: unmapped label %q", doi, r.Label)
	case pipeline.StatusFailed:
		line = fmt.Sprintf("%s  no badge: failed: %s", doi, r.Error)
	default:
		line = fmt.Sprintf("%s  no badge: %s", doi, r.Status)
	}

	if r.Title != "" {
		line += "\n    " + truncateString(r.Title, TitleMaxLen)
	}
	if r.Cached {
		line += "  [cached]"
	}
	return line
}

// truncateString truncates a string to about maxLen bytes without splitting
// a UTF-8 character, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
