package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/pkg/firecrawl"
)

// FirecrawlAdapter wraps a Firecrawl client as a Scraper for single-page scrapes.
type FirecrawlAdapter struct {
	client firecrawl.Client
}

// NewFirecrawlAdapter creates a FirecrawlAdapter from a Firecrawl client.
func NewFirecrawlAdapter(client firecrawl.Client) *FirecrawlAdapter {
	return &FirecrawlAdapter{client: client}
}

// Name implements Scraper.
func (f *FirecrawlAdapter) Name() string { return "firecrawl" }

// Supports returns true: Firecrawl can attempt any URL as a fallback.
func (f *FirecrawlAdapter) Supports(_ string) bool { return true }

// Scrape fetches a single URL's raw HTML via Firecrawl's scrape API.
func (f *FirecrawlAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     targetURL,
		Formats: []string{firecrawl.FormatRawHTML},
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, eris.New("firecrawl: scrape not successful")
	}
	html := resp.Data.BestHTML()
	if html == "" {
		return nil, eris.New("firecrawl: empty page")
	}
	u := resp.Data.Metadata.SourceURL
	if u == "" {
		u = targetURL
	}
	return &Result{
		URL:        u,
		HTML:       html,
		StatusCode: resp.Data.Metadata.StatusCode,
		Source:     "firecrawl",
	}, nil
}
