package bibtex

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// monthAbbrevs maps three-letter month prefixes to month numbers.
var monthAbbrevs = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var numericRe = regexp.MustCompile(`^[0-9]+$`)

// MonthNumber converts a month field value to a month number 1-12.
// Accepts numeric values ("3", "03") and names by three-letter prefix
// ("mar", "March"). Returns 0 when the value is empty or unrecognized.
func MonthNumber(mon string) int {
	mon = strings.TrimSpace(mon)
	if mon == "" {
		return 0
	}
	if numericRe.MatchString(mon) {
		n, _ := strconv.Atoi(mon)
		if n < 1 || n > 12 {
			return 0
		}
		return n
	}
	if len(mon) < 3 {
		return 0
	}
	return monthAbbrevs[strings.ToLower(mon[:3])]
}

// NormalizeDate fills in year and month for biblatex entries that carry
// a date field instead. Entries exported by Zotero's better-biblatex
// write date = {2020-03-15} and omit year.
//
// Returns an error naming the entry when neither year nor date exists.
func NormalizeDate(e *Entry) error {
	if e.Has("year") {
		return nil
	}

	date := e.Get("date")
	if len(date) < 4 {
		return fmt.Errorf("bibtex: entry %s: no valid date", e.Key)
	}

	e.Set("year", date[0:4])
	if len(date) >= 7 && !e.Has("month") {
		e.Set("month", date[5:7])
	}
	return nil
}

// NormalizeDates applies NormalizeDate to every entry, collecting the
// first error but normalizing the rest regardless.
func NormalizeDates(entries []Entry) error {
	var firstErr error
	for i := range entries {
		if err := NormalizeDate(&entries[i]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SortKey returns a sortable year+month key, zero-padded so string
// comparison orders chronologically. Unparseable years sort as 0000 and
// missing months as 00, placing them first in ascending order.
func SortKey(e *Entry) string {
	year, _ := strconv.Atoi(strings.TrimSpace(e.Year()))
	return fmt.Sprintf("%04d%02d", year, MonthNumber(e.Get("month")))
}

// SortNewestFirst sorts entries by year and month, newest first. The
// sort is stable so entries sharing a date keep their source order.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return SortKey(&entries[i]) > SortKey(&entries[j])
	})
}
