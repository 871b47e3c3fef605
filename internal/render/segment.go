package render

import "github.com/matsen/bibble/internal/bibtex"

// NewYearGroup reports whether the entry at position i starts a new
// year group and so needs a year header above its row.
//
// The first entry always starts a group; later entries start one
// exactly when their year differs from the previous entry's year. The
// caller is expected to pass entries already grouped by year; if years
// interleave, every transition simply gets a fresh header.
func NewYearGroup(entries []bibtex.Entry, i int) bool {
	if i == 0 {
		return true
	}
	return entries[i].Year() != entries[i-1].Year()
}
