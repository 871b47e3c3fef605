// Package fields extracts display values from bibliography entries.
//
// Each function is one independent collaborator of the row resolver:
// it reads an entry's raw fields and returns a display-ready value, or
// an empty value when the entry has nothing to show. Output escaping is
// not handled here; the page templates own that.
package fields

import (
	"fmt"
	"strings"
	"time"

	"github.com/matsen/bibble/internal/bibtex"
)

// MainURL returns the entry's primary link: the url field, falling back
// to the ee field used by DBLP exports. Returns "" when neither exists.
func MainURL(e *bibtex.Entry) string {
	for _, name := range []string{"url", "ee"} {
		if v := e.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// Title returns the entry's display title with LaTeX markup removed.
// Book chapters title themselves by their chapter field.
func Title(e *bibtex.Entry) string {
	if e.Type == "inbook" {
		if c := e.Get("chapter"); c != "" {
			return Unlatex(c)
		}
	}
	return Unlatex(e.Get("title"))
}

// DOI returns the entry's DOI, or "" when it has none.
func DOI(e *bibtex.Entry) string {
	return e.Get("doi")
}

// FormatAuthor formats one author as "First Last".
func FormatAuthor(a bibtex.Author) string {
	if a.First == "" {
		return a.Last
	}
	return a.First + " " + a.Last
}

// AuthorList formats the entry's authors as a natural-language list:
// "A", "A and B", or "A, B, and C".
func AuthorList(e *bibtex.Entry) string {
	authors := e.Authors()
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = Unlatex(FormatAuthor(a))
	}
	return andList(names)
}

// andList joins names with commas and a final "and", using a serial
// comma for three or more names.
func andList(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// VenueType returns a label describing the kind of venue, with trailing
// punctuation and spacing included so it can be concatenated directly
// in front of the venue itself. Most entry types return "".
func VenueType(e *bibtex.Entry) string {
	switch e.Type {
	case "inbook":
		return "Chapter in "
	case "techreport":
		return "Technical Report "
	case "phdthesis":
		return fmt.Sprintf("Ph.D. thesis, %s", Unlatex(e.Get("school")))
	case "mastersthesis":
		return fmt.Sprintf("Master's thesis, %s", Unlatex(e.Get("school")))
	case "unpublished":
		if hp := e.Get("howpublished"); hp != "" {
			return fmt.Sprintf("Unpublished %s. ", Unlatex(hp))
		}
		if t := e.Get("type"); t != "" {
			return fmt.Sprintf("Unpublished (type=%s). ", t)
		}
		return "Unpublished. "
	}
	return ""
}

// Venue returns the venue display string for the entry.
//
// Articles use the journal field (or biblatex's journaltitle) with an
// optional "volume(number)" suffix; proceedings use the booktitle with
// an optional series; theses return "" since VenueType already names
// the school.
func Venue(e *bibtex.Entry) (string, error) {
	switch e.Type {
	case "article":
		venue := e.Get("journal")
		if venue == "" {
			venue = e.Get("journaltitle")
		}
		if venue == "" {
			return "", fmt.Errorf("no valid journal title for %s", e.Key)
		}
		venue = Unlatex(venue)
		if vol, num := e.Get("volume"), e.Get("number"); vol != "" && num != "" {
			venue += fmt.Sprintf(" %s(%s)", vol, num)
		}
		return venue, nil
	case "inproceedings":
		venue := Unlatex(e.Get("booktitle"))
		if series := e.Get("series"); series != "" {
			venue += fmt.Sprintf(" (%s)", series)
		}
		return venue, nil
	case "inbook":
		return Unlatex(e.Get("title")), nil
	case "techreport":
		return fmt.Sprintf("%s, %s", e.Get("number"), Unlatex(e.Get("institution"))), nil
	case "phdthesis", "mastersthesis":
		return "", nil
	case "unpublished":
		return Unlatex(e.Get("eventtitle")), nil
	}
	return "", nil
}

// Link is one labeled URL from an entry's extra link fields.
type Link struct {
	Label string
	URL   string
}

// ExtraLinks returns the entry's supplementary links. Any field named
// "<label>_url" contributes a link, with underscores in the label shown
// as spaces; field order is preserved. For example slides_url and
// video_url become the links "slides" and "video".
func ExtraLinks(e *bibtex.Entry) []Link {
	var links []Link
	for _, f := range e.Fields {
		name := strings.ToLower(f.Name)
		if !strings.HasSuffix(name, "_url") {
			continue
		}
		label := strings.ReplaceAll(strings.TrimSuffix(name, "_url"), "_", " ")
		links = append(links, Link{Label: label, URL: f.Value})
	}
	return links
}

// MonthName returns the full English month name for a month field
// value, or "" when the value is absent or unrecognized.
func MonthName(mon string) string {
	n := bibtex.MonthNumber(mon)
	if n == 0 {
		return ""
	}
	return time.Month(n).String()
}

// Unlatex removes curly braces and other LaTeX guff that we don't want
// in HTML output.
func Unlatex(s string) string {
	replacer := strings.NewReplacer(
		"{", "",
		"}", "",
		`\&`, "&",
	)
	return replacer.Replace(s)
}
