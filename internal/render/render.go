// Package render turns parsed bibliography entries into row views: the
// fully resolved, render-ready representation of each publication.
//
// The package decides when a row opens a new year group and which
// display variant each optional field takes, and delegates all string
// formatting to the fields package. Escaping belongs to the page
// templates downstream.
package render

import (
	"github.com/matsen/bibble/internal/bibtex"
	"github.com/matsen/bibble/internal/fields"
)

// DOIPrefix is the DOI resolver used to build badge links.
const DOIPrefix = "https://doi.org/"

// TitleBlock is the title cell of a row. Exactly one variant applies:
// Linked is true (with a non-empty URL) when the entry has a main link,
// otherwise the title renders as plain text.
type TitleBlock struct {
	Text   string
	URL    string // empty for plain titles
	Linked bool
}

// DOIBlock is a resolved DOI badge: the identifier plus the resolver
// URL built from it.
type DOIBlock struct {
	DOI string
	URL string
}

// RowView is one publication row, ready for the page template. Optional
// blocks are zero-valued when absent: Note is "", ExtraLinks is nil,
// DOI is nil, and YearLabel/MonthLabel are "" when not shown.
type RowView struct {
	Key        string
	NewYear    bool   // row starts a new year group
	YearLabel  string // set only when NewYear
	MonthLabel string // set only when the entry has a month
	Title      TitleBlock
	Authors    string
	VenueType  string
	Venue      string
	Note       string
	ExtraLinks []fields.Link
	DOI        *DOIBlock
}

// Resolver resolves entries into row views.
type Resolver struct {
	// DOIPrefix overrides the default DOI resolver when non-empty.
	DOIPrefix string
}

func (r *Resolver) doiPrefix() string {
	if r != nil && r.DOIPrefix != "" {
		return r.DOIPrefix
	}
	return DOIPrefix
}

// Resolve resolves the entry at position i of the sequence, deciding
// header emission against its predecessor.
func (r *Resolver) Resolve(entries []bibtex.Entry, i int) (RowView, error) {
	e := &entries[i]

	if e.Year() == "" {
		return RowView{}, &MissingFieldError{Key: e.Key, Field: "year"}
	}

	row := RowView{
		Key:     e.Key,
		NewYear: NewYearGroup(entries, i),
	}
	if row.NewYear {
		row.YearLabel = e.Year()
	}
	row.MonthLabel = fields.MonthName(e.Get("month"))

	title := fields.Title(e)
	if title == "" {
		return RowView{}, &MissingFieldError{Key: e.Key, Field: "title"}
	}
	if url := fields.MainURL(e); url != "" {
		row.Title = TitleBlock{Text: title, URL: url, Linked: true}
	} else {
		row.Title = TitleBlock{Text: title}
	}

	row.Authors = fields.AuthorList(e)
	if row.Authors == "" {
		return RowView{}, &MissingFieldError{Key: e.Key, Field: "author"}
	}

	row.VenueType = fields.VenueType(e)
	venue, err := fields.Venue(e)
	if err != nil {
		return RowView{}, &CollaboratorError{Key: e.Key, Err: err}
	}
	row.Venue = venue

	row.Note = fields.Unlatex(e.Get("note"))
	row.ExtraLinks = fields.ExtraLinks(e)

	if doi := fields.DOI(e); doi != "" {
		row.DOI = &DOIBlock{DOI: doi, URL: r.doiPrefix() + doi}
	}

	return row, nil
}

// ResolveAll resolves every entry in order, collecting per-entry
// failures instead of stopping at the first. Failed entries produce no
// row; the returned rows preserve the order of the entries that
// succeeded. Header emission is recomputed over the surviving rows, so
// a failed entry never leaves its year's survivors without a header.
func (r *Resolver) ResolveAll(entries []bibtex.Entry) ([]RowView, []RowError) {
	var rows []RowView
	var errs []RowError

	lastYear := ""
	for i := range entries {
		row, err := r.Resolve(entries, i)
		if err != nil {
			errs = append(errs, RowError{Index: i, Key: entries[i].Key, Err: err})
			continue
		}
		year := entries[i].Year()
		if len(rows) == 0 || year != lastYear {
			row.NewYear = true
			row.YearLabel = year
		} else {
			row.NewYear = false
			row.YearLabel = ""
		}
		lastYear = year
		rows = append(rows, row)
	}
	return rows, errs
}
