package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/bibble/internal/bibtex"
	"github.com/matsen/bibble/internal/config"
	"github.com/matsen/bibble/internal/linkcheck"
	"github.com/matsen/bibble/internal/pdfcheck"
)

var (
	checkRemote  bool
	checkPDFRoot string
)

func init() {
	checkCmd.Flags().BoolVar(&checkRemote, "remote", false, "Also verify remote links and DOI resolution over HTTP")
	checkCmd.Flags().StringVar(&checkPDFRoot, "pdf-root", "", "Directory local PDF links are resolved against (default: config pdf_root)")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check BIBFILE.bib",
	Short: "Verify a bibliography's PDF and link targets",
	Long: `Verify that a bibliography's links point somewhere real.

Local PDF links are opened and, when the PDF contains a DOI, checked
against the entry's DOI. With --remote, main links, extra links, and
DOI resolver URLs are verified with rate-limited HTTP requests.

Examples:
  bibble check refs.bib
  bibble check refs.bib --remote
  bibble check refs.bib --pdf-root ~/papers`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// CheckReport is the JSON output of the check command.
type CheckReport struct {
	PDFs     []pdfcheck.Result  `json:"pdfs,omitempty"`
	Links    []linkcheck.Result `json:"links,omitempty"`
	Failures int                `json:"failures"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	// BIBBLE_* overrides (e.g. BIBBLE_DOI_PREFIX) may live in a .env file.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	entries, err := bibtex.ParseFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	_ = bibtex.NormalizeDates(entries)

	pdfRoot := checkPDFRoot
	if pdfRoot == "" {
		pdfRoot = cfg.PDFRoot
	}
	pdfRoot = config.ExpandTilde(pdfRoot)

	report := CheckReport{
		PDFs: pdfcheck.CheckAll(entries, pdfRoot),
	}

	if checkRemote {
		var opts []linkcheck.Option
		if prefix := doiPrefix(cfg); prefix != "" {
			opts = append(opts, linkcheck.WithDOIPrefix(prefix))
		}
		checker := linkcheck.New(opts...)
		report.Links = checker.CheckAll(context.Background(), entries)
	}

	for _, r := range report.PDFs {
		if !r.OK {
			report.Failures++
		}
	}
	for _, r := range report.Links {
		if !r.OK {
			report.Failures++
		}
	}

	if humanOutput {
		printCheckHuman(report)
	} else {
		outputJSON(report)
	}

	if report.Failures > 0 {
		os.Exit(ExitCheckFailed)
	}
	return nil
}

// doiPrefix resolves the DOI prefix: BIBBLE_DOI_PREFIX env, then config.
func doiPrefix(cfg *config.Config) string {
	if p := os.Getenv("BIBBLE_DOI_PREFIX"); p != "" {
		return p
	}
	return cfg.DOIPrefix
}

func printCheckHuman(report CheckReport) {
	for _, r := range report.PDFs {
		if r.OK {
			fmt.Printf("ok   %-20s %s\n", r.Key, r.Path)
		} else {
			fmt.Printf("FAIL %-20s %s: %s\n", r.Key, r.Path, r.Problem)
		}
	}
	for _, r := range report.Links {
		if r.OK {
			fmt.Printf("ok   %-20s [%s] %s\n", r.Key, r.Label, r.URL)
		} else {
			fmt.Printf("FAIL %-20s [%s] %s: %s\n", r.Key, r.Label, r.URL, r.Problem)
		}
	}
	if report.Failures == 0 {
		fmt.Println("All checks passed")
	} else {
		fmt.Printf("%d checks failed\n", report.Failures)
	}
}
