// Package pdfcheck verifies that entries' local PDF links point at
// readable PDF files, and cross-checks DOIs found inside them against
// the bibliography.
package pdfcheck

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/bibble/internal/bibtex"
	"github.com/matsen/bibble/internal/fields"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Result is the outcome of checking one entry's PDF.
type Result struct {
	Key     string `json:"key"`
	Path    string `json:"path"`
	OK      bool   `json:"ok"`
	Problem string `json:"problem,omitempty"`
}

// LocalPath returns the filesystem path for an entry whose main URL is
// a local file, resolved against root. Returns "" for entries with no
// main URL or with a remote (http/https) one.
func LocalPath(e *bibtex.Entry, root string) string {
	u := fields.MainURL(e)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return ""
	}
	u = strings.TrimPrefix(u, "file://")
	if filepath.IsAbs(u) {
		return u
	}
	return filepath.Join(root, u)
}

// CheckEntry verifies the entry's local PDF, if it has one. Entries
// without a local PDF link return a nil result.
func CheckEntry(e *bibtex.Entry, root string) *Result {
	path := LocalPath(e, root)
	if path == "" {
		return nil
	}

	res := &Result{Key: e.Key, Path: path, OK: true}

	doi, err := ExtractDOI(path)
	if err != nil {
		res.OK = false
		res.Problem = fmt.Sprintf("unreadable PDF: %v", err)
		return res
	}

	// Cross-check only when both sides have a DOI.
	want := bibtex.NormalizeDOI(fields.DOI(e))
	if want != "" && doi != "" && bibtex.NormalizeDOI(doi) != want {
		res.OK = false
		res.Problem = fmt.Sprintf("PDF contains DOI %s but entry has %s", doi, want)
	}
	return res
}

// CheckAll checks every entry with a local PDF link.
func CheckAll(entries []bibtex.Entry, root string) []Result {
	var results []Result
	for i := range entries {
		if res := CheckEntry(&entries[i], root); res != nil {
			results = append(results, *res)
		}
	}
	return results
}

// ExtractDOI extracts a DOI from a PDF file.
// It searches the first few pages for DOI patterns.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// DOI is usually on the first page
	maxPages := 3
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := findDOI(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil // No DOI found (not an error)
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	matches := doiPattern.FindAllString(text, -1)
	for _, match := range matches {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}
