// Package author provides author name parsing and matching for list
// filters.
package author

import (
	"strings"

	"github.com/matsen/bibble/internal/bibtex"
)

// Query represents a parsed author filter.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

// ParseQuery parses an author filter string into a structured Query.
//
// Supported formats:
//   - "Yu"           → last="Yu" (single word = last name only)
//   - "Timothy Yu"   → first="Timothy", last="Yu" (space-separated = First Last)
//   - "Yu, Timothy"  → first="Timothy", last="Yu" (comma = Last, First)
//
// Names are trimmed but case is preserved (matching is case-insensitive).
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	// Comma format: "Last, First"
	if idx := strings.Index(input, ","); idx > 0 {
		last := strings.TrimSpace(input[:idx])
		first := strings.TrimSpace(input[idx+1:])
		return Query{First: first, Last: last}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		// Single word = last name only
		return Query{Last: parts[0]}
	}

	// Multiple words: last word is the last name, rest is the first name
	// e.g., "Timothy C Yu" → first="Timothy C", last="Yu"
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	return Query{First: first, Last: last}
}

// Matches checks if the query matches a given author.
//
// Matching rules:
//   - Last name: case-insensitive exact match (required)
//   - First name: case-insensitive prefix match (if query has first name)
//
// This lets "Tim Yu" match "Timothy C Yu" while preventing "Yu" from
// matching authors whose last name merely starts with Yu.
func (q Query) Matches(a bibtex.Author) bool {
	if !strings.EqualFold(q.Last, a.Last) {
		return false
	}

	if q.First == "" {
		return true
	}

	return strings.HasPrefix(
		strings.ToLower(a.First),
		strings.ToLower(q.First),
	)
}

// MatchesAny checks if the query matches any author in the list.
func (q Query) MatchesAny(authors []bibtex.Author) bool {
	for _, a := range authors {
		if q.Matches(a) {
			return true
		}
	}
	return false
}

// MatchesEntry checks if the query matches any of an entry's authors.
func (q Query) MatchesEntry(e *bibtex.Entry) bool {
	return q.MatchesAny(e.Authors())
}
