package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matsen/bibble/internal/bibtex"
)

func testEntry(pairs ...string) bibtex.Entry {
	e := bibtex.Entry{Key: "k", Type: "misc"}
	for i := 0; i+1 < len(pairs); i += 2 {
		e.Fields = append(e.Fields, bibtex.Field{Name: pairs[i], Value: pairs[i+1]})
	}
	return e
}

func TestTargets(t *testing.T) {
	c := New()
	e := testEntry(
		"url", "https://x.org/paper.pdf",
		"slides_url", "https://x.org/slides.pdf",
		"code_url", "local/code.zip", // not remote, skipped
		"doi", "10.1/xyz",
	)

	targets := c.Targets(&e)
	if len(targets) != 3 {
		t.Fatalf("Targets() = %+v, want 3 targets", targets)
	}
	if targets[0].Label != "main" || targets[0].URL != "https://x.org/paper.pdf" {
		t.Errorf("target 0 = %+v, want main link", targets[0])
	}
	if targets[1].Label != "slides" {
		t.Errorf("target 1 = %+v, want slides link", targets[1])
	}
	if targets[2].Label != "doi" || targets[2].URL != "https://doi.org/10.1/xyz" {
		t.Errorf("target 2 = %+v, want doi resolver URL", targets[2])
	}
}

func TestTargets_LocalMainURLSkipped(t *testing.T) {
	c := New()
	e := testEntry("url", "papers/a.pdf")
	if targets := c.Targets(&e); len(targets) != 0 {
		t.Errorf("Targets() = %+v, want none for local-only entry", targets)
	}
}

func TestCheckAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/nohead":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	entries := []bibtex.Entry{
		testEntry("url", srv.URL+"/ok", "slides_url", srv.URL+"/gone"),
		testEntry("url", srv.URL+"/nohead"),
	}

	c := New(WithHTTPClient(srv.Client()), WithRateLimit(1000))
	results := c.CheckAll(context.Background(), entries)
	if len(results) != 3 {
		t.Fatalf("CheckAll() = %+v, want 3 results", results)
	}

	if !results[0].OK || results[0].Status != http.StatusOK {
		t.Errorf("result 0 = %+v, want ok", results[0])
	}
	if results[1].OK || results[1].Status != http.StatusNotFound {
		t.Errorf("result 1 = %+v, want 404 failure", results[1])
	}
	// HEAD rejected, GET retried
	if !results[2].OK {
		t.Errorf("result 2 = %+v, want ok after GET fallback", results[2])
	}
}

func TestCheckAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := []bibtex.Entry{testEntry("url", "https://example.org/x")}
	c := New()
	results := c.CheckAll(ctx, entries)
	if len(results) != 1 {
		t.Fatalf("CheckAll() = %+v, want 1 result", results)
	}
	if results[0].OK {
		t.Errorf("result = %+v, want failure under cancelled context", results[0])
	}
}

func TestWithDOIPrefix(t *testing.T) {
	c := New(WithDOIPrefix("https://dx.doi.org/"))
	e := testEntry("doi", "10.1/xyz")
	targets := c.Targets(&e)
	if len(targets) != 1 || targets[0].URL != "https://dx.doi.org/10.1/xyz" {
		t.Errorf("Targets() = %+v, want overridden prefix", targets)
	}
}
