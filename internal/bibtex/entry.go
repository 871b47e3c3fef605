// Package bibtex parses BibTeX and biblatex bibliography files into
// entry records for rendering.
package bibtex

import "strings"

// Field is a single name/value pair from an entry, in source order.
// Names are lowercased by the parser; values have their outer braces or
// quotes removed but are otherwise untouched.
type Field struct {
	Name  string
	Value string
}

// Entry represents one bibliography record.
type Entry struct {
	Key    string  // citation key
	Type   string  // entry type, lowercased: article, inproceedings, ...
	Fields []Field // in source order
}

// Get returns the value of the named field, or "" if absent.
func (e *Entry) Get(name string) string {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Has reports whether the named field is present, even if empty.
func (e *Entry) Has(name string) bool {
	for _, f := range e.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Set replaces the named field's value, appending the field if absent.
func (e *Entry) Set(name, value string) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			e.Fields[i].Value = value
			return
		}
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// Year returns the entry's year field. Grouping compares these values
// directly, so the parser trims whitespace when storing them.
func (e *Entry) Year() string {
	return e.Get("year")
}

// Author is one parsed author name.
type Author struct {
	First string // given names, including middle names
	Last  string // family name
}

// Authors parses the entry's author field. BibTeX separates authors
// with " and " and writes each as either "Last, First" or "First Last".
func (e *Entry) Authors() []Author {
	raw := e.Get("author")
	if raw == "" {
		return nil
	}

	var authors []Author
	for _, name := range splitAnd(raw) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		authors = append(authors, parseName(name))
	}
	return authors
}

// splitAnd splits an author field on the " and " separator.
func splitAnd(s string) []string {
	return strings.Split(s, " and ")
}

// parseName parses a single author name in either comma or plain form.
func parseName(name string) Author {
	if idx := strings.Index(name, ","); idx >= 0 {
		return Author{
			First: strings.TrimSpace(name[idx+1:]),
			Last:  strings.TrimSpace(name[:idx]),
		}
	}

	parts := strings.Fields(name)
	if len(parts) == 1 {
		return Author{Last: parts[0]}
	}
	return Author{
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
	}
}
