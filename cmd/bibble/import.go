package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibble/internal/bibtex"
	"github.com/matsen/bibble/internal/config"
	"github.com/matsen/bibble/internal/storage"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import BIBFILE.bib",
	Short: "Parse a .bib file into the local entry cache",
	Long: `Parse a .bib file and rebuild the .bibble entry cache from it.

The cache is a SQLite database under .bibble/ (or $BIBBLE_ROOT/.bibble)
that list and render --from-cache read instead of re-parsing the .bib
source. Importing replaces the cache contents wholesale.

Examples:
  bibble import refs.bib
  bibble import refs.bib --human`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	entries, err := bibtex.ParseFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	// Missing dates surface when the entry is rendered.
	_ = bibtex.NormalizeDates(entries)
	bibtex.SortNewestFirst(entries)

	root, err := workRoot()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := config.EnsureDataDir(root); err != nil {
		exitWithError(ExitError, "creating data directory: %v", err)
	}

	dbPath := config.DBPath(root)
	db, err := storage.Open(dbPath)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer db.Close()

	count, err := db.Rebuild(entries)
	if err != nil {
		exitWithError(ExitError, "rebuilding cache: %v", err)
	}

	if humanOutput {
		fmt.Printf("Imported %d entries into %s\n", count, dbPath)
	} else {
		outputJSON(StatusResponse{Status: "imported", Path: dbPath, Count: count})
	}
	return nil
}
