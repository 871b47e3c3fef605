package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bibble/internal/bibtex"
	"github.com/matsen/bibble/internal/fields"
	"github.com/matsen/bibble/internal/render"
)

// ListTitleMaxLen truncates titles in list command output.
const ListTitleMaxLen = 60

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// EntrySummary is one entry in list command JSON output.
type EntrySummary struct {
	Key     string `json:"key"`
	Type    string `json:"type"`
	Year    string `json:"year"`
	Title   string `json:"title"`
	Authors string `json:"authors"`
	DOI     string `json:"doi,omitempty"`
}

// summarize converts an entry to its list representation.
func summarize(e *bibtex.Entry) EntrySummary {
	return EntrySummary{
		Key:     e.Key,
		Type:    e.Type,
		Year:    e.Year(),
		Title:   fields.Title(e),
		Authors: fields.AuthorList(e),
		DOI:     fields.DOI(e),
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:max(maxLen, 0)]
	}
	return s[:maxLen-3] + "..."
}

// reportRowErrors prints per-entry resolution failures to stderr.
func reportRowErrors(errs []render.RowError) {
	var msgs []string
	for i := range errs {
		msgs = append(msgs, errs[i].Error())
	}
	fmt.Fprintf(os.Stderr, "warning: %d entries skipped:\n  %s\n",
		len(errs), strings.Join(msgs, "\n  "))
}
