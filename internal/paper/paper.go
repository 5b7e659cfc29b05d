// Package paper defines the core domain types for DOI lookups and their cached results.
package paper

import "time"

// Metadata is the bibliographic record resolved for a DOI.
// Zero values mean the registry did not supply the field.
type Metadata struct {
	Title   string   `json:"title"`
	PDFURL  string   `json:"pdfUrl,omitempty"`
	Authors []string `json:"authors,omitempty"` // "Given Family", in registry order
	Journal string   `json:"journal,omitempty"`
	Year    int      `json:"year,omitempty"`
}

// HasTitle reports whether the record carries a usable title.
func (m Metadata) HasTitle() bool {
	return m.Title != ""
}

// HasPDF reports whether the record carries a PDF link.
func (m Metadata) HasPDF() bool {
	return m.PDFURL != ""
}

// Classification is the label returned by the classification service.
type Classification struct {
	Label      string   `json:"classification"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Entry is one cached DOI. A Classification is only ever attached after Metadata.
type Entry struct {
	DOI            string          `json:"doi"`
	Metadata       Metadata        `json:"metadata"`
	Classification *Classification `json:"classification,omitempty"`
	ProcessedAt    time.Time       `json:"processedAt"`
}

// Classified reports whether the entry already carries a classification.
func (e *Entry) Classified() bool {
	return e != nil && e.Classification != nil
}
