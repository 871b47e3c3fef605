// Package main provides the bibble CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibble",
	Short: "Render BibTeX bibliographies to HTML publication lists",
	Long: `bibble renders a BibTeX or biblatex .bib file into an HTML
publication list: one row per entry, grouped under year headers, with
PDF links, notes, extra links, and DOI badges rendered when present.

It can also cache a bibliography in a local SQLite database for fast
listing, verify local PDFs and remote links, and publish the rendered
page to a web host over SSH.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// workRoot returns the directory holding the .bibble data directory:
// BIBBLE_ROOT when set, otherwise the current directory.
func workRoot() (string, error) {
	if root := os.Getenv("BIBBLE_ROOT"); root != "" {
		return root, nil
	}
	return os.Getwd()
}
