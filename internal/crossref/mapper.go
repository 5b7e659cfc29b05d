package crossref

import (
	"strings"

	"github.com/matsen/doibadge/internal/paper"
)

const pdfContentType = "application/pdf"

// mapWork converts a Crossref work record to paper metadata.
func mapWork(w work) paper.Metadata {
	return paper.Metadata{
		Title:   first(w.Title),
		Authors: mapAuthors(w.Author),
		PDFURL:  pdfLink(w.Link),
		Journal: first(w.ContainerTitle),
		Year:    publishedYear(w.Published),
	}
}

// mapAuthors joins given and family names. Missing parts are treated as empty.
func mapAuthors(authors []author) []string {
	if len(authors) == 0 {
		return nil
	}
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, strings.TrimSpace(a.Given+" "+a.Family))
	}
	return names
}

// pdfLink returns the first link declared as application/pdf.
func pdfLink(links []link) string {
	for _, l := range links {
		if l.ContentType == pdfContentType {
			return l.URL
		}
	}
	return ""
}

// publishedYear returns the first element of the earliest date-parts entry, or 0.
func publishedYear(d *dateInfo) int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
