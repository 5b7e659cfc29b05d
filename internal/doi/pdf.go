package doi

import (
	"github.com/ledongthuc/pdf"
)

// maxPDFPages is how many leading pages ExtractFromPDF searches.
// The DOI is almost always printed on the first page.
const maxPDFPages = 3

// ExtractFromPDF extracts a DOI from a local PDF file.
// Returns ("", false, nil) if the file opens but carries no DOI.
func ExtractFromPDF(filePath string) (string, bool, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	pages := maxPDFPages
	if r.NumPage() < pages {
		pages = r.NumPage()
	}

	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if found, ok := Extract(text); ok {
			return found, true, nil
		}
	}

	return "", false, nil
}
