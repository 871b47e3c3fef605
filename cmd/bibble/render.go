package main

import (
	"fmt"
	"html/template"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/bibble/internal/bibtex"
	"github.com/matsen/bibble/internal/config"
	"github.com/matsen/bibble/internal/page"
	"github.com/matsen/bibble/internal/render"
	"github.com/matsen/bibble/internal/storage"
)

var (
	renderOutput    string
	renderTemplate  string
	renderTitle     string
	renderNoSort    bool
	renderFromCache bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write HTML to file instead of stdout")
	renderCmd.Flags().StringVar(&renderTemplate, "template", "", "HTML template file (default: built-in)")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "Page title (default: Publications)")
	renderCmd.Flags().BoolVar(&renderNoSort, "no-sort", false, "Keep source order instead of sorting newest-first")
	renderCmd.Flags().BoolVar(&renderFromCache, "from-cache", false, "Render from the .bibble entry cache instead of a .bib file")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [BIBFILE.bib]",
	Short: "Render a bibliography to an HTML publication list",
	Long: `Render a BibTeX .bib file to an HTML publication list.

Entries are grouped under year headers, newest first. Entries that
cannot be rendered (missing year, title, or authors) are skipped and
reported on stderr; the rest of the page still renders.

Examples:
  bibble render refs.bib > pubs.html
  bibble render refs.bib --template mypage.tmpl -o pubs.html
  bibble render --from-cache -o pubs.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	entries, err := loadEntries(args)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	// Missing dates surface as per-entry resolution failures below.
	_ = bibtex.NormalizeDates(entries)

	if !renderNoSort {
		bibtex.SortNewestFirst(entries)
	}

	resolver := &render.Resolver{DOIPrefix: cfg.DOIPrefix}
	rows, rowErrs := resolver.ResolveAll(entries)

	tmpl, err := pickTemplate(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	out := os.Stdout
	if renderOutput != "" {
		f, err := os.Create(renderOutput)
		if err != nil {
			exitWithError(ExitError, "creating output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	data := page.Data{Title: pageTitle(cfg), Rows: rows}
	if err := page.Render(out, tmpl, data); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if len(rowErrs) > 0 {
		reportRowErrors(rowErrs)
		os.Exit(ExitDataError)
	}
	return nil
}

// loadEntries reads entries from the named .bib file or, with
// --from-cache, from the local entry cache.
func loadEntries(args []string) ([]bibtex.Entry, error) {
	if renderFromCache {
		if len(args) > 0 {
			return nil, fmt.Errorf("--from-cache takes no BIBFILE argument")
		}
		root, err := workRoot()
		if err != nil {
			return nil, err
		}
		db, err := storage.Open(config.DBPath(root))
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.ListAll()
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("BIBFILE argument required (or use --from-cache)")
	}
	return bibtex.ParseFile(args[0])
}

// pickTemplate applies the template precedence: flag, config, built-in.
func pickTemplate(cfg *config.Config) (*template.Template, error) {
	switch {
	case renderTemplate != "":
		return page.Load(renderTemplate)
	case cfg.Template != "":
		return page.Load(cfg.Template)
	default:
		return page.Default(), nil
	}
}

// pageTitle applies the title precedence: flag, config, default.
func pageTitle(cfg *config.Config) string {
	switch {
	case renderTitle != "":
		return renderTitle
	case cfg.PageTitle != "":
		return cfg.PageTitle
	default:
		return "Publications"
	}
}
