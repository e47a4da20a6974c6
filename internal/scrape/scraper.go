// Package scrape fetches raw homepage HTML for site audits, falling back to
// Firecrawl when a site blocks direct requests.
package scrape

import (
	"context"
	"net/url"
	"strings"
)

// Result holds one fetched page.
type Result struct {
	URL        string
	HTML       string
	StatusCode int
	Source     string // e.g. "local_http", "firecrawl"
}

// Scraper fetches a single URL and returns its HTML.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}

// NormalizeURL trims a website value and adds an https scheme when missing.
// Returns "" for blank input.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	return raw
}

// Domain returns the host of a website without a leading "www.".
func Domain(raw string) string {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
