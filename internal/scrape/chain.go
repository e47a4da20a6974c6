package scrape

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Chain tries scrapers in priority order, returning the first success.
type Chain struct {
	Filter   *HostFilter
	scrapers []Scraper
}

// NewChain creates a Chain with the given host filter and scrapers.
// Scrapers are tried in order; the first successful result is returned.
func NewChain(filter *HostFilter, scrapers ...Scraper) *Chain {
	if filter == nil {
		filter = NewHostFilter(nil)
	}
	return &Chain{
		Filter:   filter,
		scrapers: scrapers,
	}
}

// Name implements Scraper.
func (c *Chain) Name() string { return "chain" }

// Supports reports whether the URL passes the host filter.
func (c *Chain) Supports(targetURL string) bool { return !c.Filter.IsExcluded(targetURL) }

// Scrape tries each scraper in order for a single URL.
// Returns the first successful result, or an error if all fail.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	targetURL = NormalizeURL(targetURL)
	if c.Filter.IsExcluded(targetURL) {
		return nil, eris.Errorf("scrape: url excluded by host filter: %s", targetURL)
	}

	var lastErr error
	for _, s := range c.scrapers {
		if !s.Supports(targetURL) {
			continue
		}
		result, err := s.Scrape(ctx, targetURL)
		if err == nil && result != nil {
			return result, nil
		}
		if err != nil {
			zap.L().Debug("scrape: scraper failed, trying next",
				zap.String("scraper", s.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "scrape: all scrapers failed")
	}
	return nil, eris.Errorf("scrape: no suitable scraper for url: %s", targetURL)
}
