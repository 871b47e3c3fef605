// Package linkcheck verifies that entries' remote links resolve, using
// a rate-limited HTTP client so bibliographies with many links don't
// hammer any one host.
package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/bibble/internal/bibtex"
	"github.com/matsen/bibble/internal/fields"
	"github.com/matsen/bibble/internal/render"
)

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps outgoing requests per second.
	RateLimit = 5.0
)

// Target is one URL to check, tagged with its origin.
type Target struct {
	Key   string `json:"key"`
	Label string `json:"label"` // "main", "doi", or the extra-link label
	URL   string `json:"url"`
}

// Result is the outcome of checking one target.
type Result struct {
	Target
	OK      bool   `json:"ok"`
	Status  int    `json:"status,omitempty"`
	Problem string `json:"problem,omitempty"`
}

// Checker is a rate-limited link checker.
type Checker struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	doiPrefix  string
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Checker) {
		c.httpClient = hc
	}
}

// WithRateLimit overrides the default requests-per-second cap.
func WithRateLimit(rps float64) Option {
	return func(c *Checker) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithDOIPrefix overrides the DOI resolver used for DOI targets.
func WithDOIPrefix(prefix string) Option {
	return func(c *Checker) {
		c.doiPrefix = prefix
	}
}

// New creates a link checker.
func New(opts ...Option) *Checker {
	c := &Checker{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		doiPrefix:  render.DOIPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Targets collects every remote URL an entry would render: the main
// link (when remote), each extra link, and the DOI resolver URL.
func (c *Checker) Targets(e *bibtex.Entry) []Target {
	var targets []Target

	if u := fields.MainURL(e); isRemote(u) {
		targets = append(targets, Target{Key: e.Key, Label: "main", URL: u})
	}
	for _, link := range fields.ExtraLinks(e) {
		if isRemote(link.URL) {
			targets = append(targets, Target{Key: e.Key, Label: link.Label, URL: link.URL})
		}
	}
	if doi := fields.DOI(e); doi != "" {
		targets = append(targets, Target{Key: e.Key, Label: "doi", URL: c.doiPrefix + doi})
	}
	return targets
}

// CheckAll checks every remote link of every entry, in order. The
// context cancels the remaining checks, not the one in flight.
func (c *Checker) CheckAll(ctx context.Context, entries []bibtex.Entry) []Result {
	var results []Result
	for i := range entries {
		for _, target := range c.Targets(&entries[i]) {
			results = append(results, c.check(ctx, target))
			if ctx.Err() != nil {
				return results
			}
		}
	}
	return results
}

// check performs a single rate-limited request against a target. HEAD
// is tried first; hosts that reject HEAD get a GET.
func (c *Checker) check(ctx context.Context, target Target) Result {
	res := Result{Target: target}

	if err := c.limiter.Wait(ctx); err != nil {
		res.Problem = err.Error()
		return res
	}

	status, err := c.request(ctx, http.MethodHead, target.URL)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = c.request(ctx, http.MethodGet, target.URL)
	}
	if err != nil {
		res.Problem = err.Error()
		return res
	}

	res.Status = status
	if status >= 400 {
		res.Problem = fmt.Sprintf("HTTP %d", status)
		return res
	}
	res.OK = true
	return res
}

func (c *Checker) request(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func isRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
