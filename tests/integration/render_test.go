// Package integration tests the full render path: .bib source through
// parsing, normalization, sorting, row resolution, and page assembly.
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/bibble/internal/bibtex"
	"github.com/matsen/bibble/internal/page"
	"github.com/matsen/bibble/internal/render"
	"github.com/matsen/bibble/internal/storage"
)

const testBib = `
@string{jmlr = {Journal of Machine Learning Research}}

@article{Newest2021,
	title = {The {Newest} Result},
	author = {Smith, John and Doe, Jane},
	journal = jmlr,
	volume = {22},
	number = {4},
	year = {2021},
	month = nov,
	url = {https://example.org/newest.pdf},
	doi = {10.1234/newest},
	slides_url = {https://example.org/slides.pdf},
}

@inproceedings{Mid2021,
	title = {A Mid-Year Paper},
	author = {Roe, Richard},
	booktitle = {Proceedings of {ICML}},
	year = {2021},
	month = {3},
	note = {Best paper award},
}

@article{Biblatex2019,
	title = {Dated Differently},
	author = {Doe, Jane},
	journaltitle = {PLOS One},
	date = {2019-07-02},
}

@misc{Broken,
	title = {No Date At All},
	author = {Nobody},
}
`

// renderBib runs the whole pipeline the render command uses.
func renderBib(t *testing.T, src string) (string, []render.RowError) {
	t.Helper()

	entries, err := bibtex.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	_ = bibtex.NormalizeDates(entries)
	bibtex.SortNewestFirst(entries)

	var resolver render.Resolver
	rows, rowErrs := resolver.ResolveAll(entries)

	var b strings.Builder
	if err := page.Render(&b, page.Default(), page.Data{Title: "Publications", Rows: rows}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	return b.String(), rowErrs
}

func TestRenderPipeline(t *testing.T) {
	out, rowErrs := renderBib(t, testBib)

	// The dateless entry fails; everything else renders.
	if len(rowErrs) != 1 {
		t.Fatalf("row errors = %v, want exactly one (the dateless entry)", rowErrs)
	}
	if rowErrs[0].Key != "Broken" {
		t.Errorf("failed entry = %s, want Broken", rowErrs[0].Key)
	}
	if strings.Contains(out, "No Date At All") {
		t.Error("failed entry leaked into output")
	}

	// Year headers: one per group, 2021 before 2019.
	if got := strings.Count(out, "<h2>"); got != 2 {
		t.Errorf("year headers = %d, want 2", got)
	}
	pos2021 := strings.Index(out, "<h2>2021</h2>")
	pos2019 := strings.Index(out, "<h2>2019</h2>")
	if pos2021 < 0 || pos2019 < 0 || pos2021 > pos2019 {
		t.Errorf("year headers missing or misordered (2021 at %d, 2019 at %d)", pos2021, pos2019)
	}

	// Newest-first within 2021: November before March.
	posNewest := strings.Index(out, "The Newest Result")
	posMid := strings.Index(out, "A Mid-Year Paper")
	if posNewest < 0 || posMid < 0 || posNewest > posMid {
		t.Errorf("entries misordered (newest at %d, mid at %d)", posNewest, posMid)
	}

	// Macro expansion and venue formatting.
	if !strings.Contains(out, "Journal of Machine Learning Research 22(4)") {
		t.Errorf("article venue missing:\n%s", out)
	}
	if !strings.Contains(out, "Proceedings of ICML") {
		t.Error("proceedings venue missing")
	}

	// Linked title with icon; plain title without.
	if !strings.Contains(out, `<a href="https://example.org/newest.pdf">`) {
		t.Error("main link missing")
	}
	if got := strings.Count(out, `<span class="pdficon">`); got != 1 {
		t.Errorf("pdf icons = %d, want 1", got)
	}

	// Optional blocks.
	if !strings.Contains(out, "Best paper award") {
		t.Error("note missing")
	}
	if !strings.Contains(out, `<a href="https://doi.org/10.1234/newest">doi:10.1234/newest</a>`) {
		t.Error("DOI badge missing")
	}
	if !strings.Contains(out, `<a href="https://example.org/slides.pdf">[slides]</a>`) {
		t.Error("extra link missing")
	}

	// biblatex date normalization: month appears as a label.
	if !strings.Contains(out, "July") {
		t.Error("biblatex month not normalized")
	}
	// Authors in and-list form.
	if !strings.Contains(out, "John Smith and Jane Doe") {
		t.Error("author list missing")
	}
}

func TestRenderPipeline_EmptyBibliography(t *testing.T) {
	out, rowErrs := renderBib(t, "just a comment, no entries")
	if len(rowErrs) != 0 {
		t.Errorf("row errors = %v, want none", rowErrs)
	}
	if strings.Count(out, "<h2>") != 0 {
		t.Error("empty bibliography should render no year headers")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	entries, err := bibtex.Parse(strings.NewReader(testBib))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	_ = bibtex.NormalizeDates(entries)
	bibtex.SortNewestFirst(entries)

	dbPath := filepath.Join(t.TempDir(), "entries.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := db.Rebuild(entries); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	cached, err := db.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}

	// Rendering from the cache produces the same rows as from the parse.
	var resolver render.Resolver
	fromParse, _ := resolver.ResolveAll(entries)
	fromCache, _ := resolver.ResolveAll(cached)

	if len(fromParse) != len(fromCache) {
		t.Fatalf("row counts differ: %d vs %d", len(fromParse), len(fromCache))
	}
	for i := range fromParse {
		if fromParse[i].Key != fromCache[i].Key {
			t.Errorf("row %d: %s vs %s", i, fromParse[i].Key, fromCache[i].Key)
		}
		if fromParse[i].Title != fromCache[i].Title {
			t.Errorf("row %d title differs: %+v vs %+v", i, fromParse[i].Title, fromCache[i].Title)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("cache file missing: %v", err)
	}
}
