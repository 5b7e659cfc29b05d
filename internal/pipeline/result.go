package pipeline

// Status tells why a lookup did or did not produce a badge.
type Status string

const (
	StatusBadged   Status = "badged"   // Classified with a known label
	StatusUnmapped Status = "unmapped" // Classified, but the label has no badge
	StatusNoTitle  Status = "no_title" // Metadata has no title; classification skipped
	StatusNoPDF    Status = "no_pdf"   // Metadata has no PDF link; classification skipped
	StatusNoDOI    Status = "no_doi"   // Text contained no DOI
	StatusFailed   Status = "failed"   // A fetch, classification or budget error
)

// Result is the outcome of processing one DOI.
type Result struct {
	DOI    string `json:"doi,omitempty"`
	Status Status `json:"status"`
	Badge  string `json:"badge,omitempty"`
	Label  string `json:"label,omitempty"`
	Title  string `json:"title,omitempty"`
	Cached bool   `json:"cached"` // Answered without any network call
	Err    error  `json:"-"`
	Error  string `json:"error,omitempty"`
}

// BadgeID returns the badge, or ("", false) when there is none.
func (r Result) BadgeID() (string, bool) {
	return r.Badge, r.Badge != ""
}

func failed(doi string, err error) Result {
	return Result{DOI: doi, Status: StatusFailed, Err: err, Error: err.Error()}
}
