package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibble/internal/author"
	"github.com/matsen/bibble/internal/bibtex"
	"github.com/matsen/bibble/internal/config"
	"github.com/matsen/bibble/internal/fields"
	"github.com/matsen/bibble/internal/storage"
)

var (
	listYear   int
	listAuthor string
)

func init() {
	listCmd.Flags().IntVar(&listYear, "year", 0, "Only entries from this year")
	listCmd.Flags().StringVar(&listAuthor, "author", "", `Only entries by this author ("Last", "First Last", or "Last, First")`)
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached entries",
	Long: `List entries from the .bibble entry cache.

Run import first to build the cache from a .bib file.

Examples:
  bibble list
  bibble list --year 2020
  bibble list --author "Yu, Timothy"`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	root, err := workRoot()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	db, err := storage.Open(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer db.Close()

	var entries []bibtex.Entry
	if listYear != 0 {
		entries, err = db.ListByYear(listYear)
	} else {
		entries, err = db.ListAll()
	}
	if err != nil {
		exitWithError(ExitError, "listing entries: %v", err)
	}

	if listAuthor != "" {
		q := author.ParseQuery(listAuthor)
		var filtered []bibtex.Entry
		for i := range entries {
			if q.MatchesEntry(&entries[i]) {
				filtered = append(filtered, entries[i])
			}
		}
		entries = filtered
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No matching entries")
			return nil
		}
		fmt.Printf("%d entries:\n\n", len(entries))
		for i := range entries {
			e := &entries[i]
			title := truncateString(fields.Title(e), ListTitleMaxLen)
			fmt.Printf("  %-20s %s  %s\n", e.Key, e.Year(), title)
		}
		return nil
	}

	summaries := make([]EntrySummary, 0, len(entries))
	for i := range entries {
		summaries = append(summaries, summarize(&entries[i]))
	}
	outputJSON(summaries)
	return nil
}
