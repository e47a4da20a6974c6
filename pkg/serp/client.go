// Package serp wraps SerpAPI Google searches used as an industry demand proxy.
package serp

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	g "github.com/serpapi/google-search-results-golang"
	"golang.org/x/time/rate"
)

// Client runs Google searches through SerpAPI.
type Client interface {
	Search(ctx context.Context, query, location string) (*Summary, error)
}

// Summary is the demand-relevant slice of one search response.
type Summary struct {
	TotalResults int64
	Ads          int
	LocalResults int
}

// searchFunc performs one SerpAPI request. Replaced in tests.
type searchFunc func(params map[string]string, apiKey string) (map[string]interface{}, error)

func serpSearch(params map[string]string, apiKey string) (map[string]interface{}, error) {
	search := g.NewGoogleSearch(params, apiKey)
	resp, err := search.GetJSON()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}(resp), nil
}

// Option configures the client.
type Option func(*serpClient)

// WithRateLimit throttles searches to rps per second.
func WithRateLimit(rps float64) Option {
	return func(c *serpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithLanguage sets the hl and gl search parameters.
func WithLanguage(hl, gl string) Option {
	return func(c *serpClient) {
		c.hl = hl
		c.gl = gl
	}
}

type serpClient struct {
	apiKey  string
	hl      string
	gl      string
	search  searchFunc
	limiter *rate.Limiter
}

// NewClient creates a SerpAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &serpClient{
		apiKey:  apiKey,
		hl:      "en",
		gl:      "us",
		search:  serpSearch,
		limiter: rate.NewLimiter(2, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *serpClient) Search(ctx context.Context, query, location string) (*Summary, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "serp: rate limit")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "serp: search")
	}

	params := map[string]string{
		"engine":   "google",
		"q":        query,
		"location": location,
		"hl":       c.hl,
		"gl":       c.gl,
	}
	resp, err := c.search(params, c.apiKey)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("serp: search %q", query))
	}
	if msg, ok := resp["error"].(string); ok && msg != "" {
		return nil, eris.Errorf("serp: search %q: %s", query, msg)
	}
	return summarize(resp), nil
}

func summarize(resp map[string]interface{}) *Summary {
	s := &Summary{}
	if info, ok := resp["search_information"].(map[string]interface{}); ok {
		if total, ok := info["total_results"].(float64); ok {
			s.TotalResults = int64(total)
		}
	}
	if ads, ok := resp["ads"].([]interface{}); ok {
		s.Ads = len(ads)
	}
	switch local := resp["local_results"].(type) {
	case []interface{}:
		s.LocalResults = len(local)
	case map[string]interface{}:
		if places, ok := local["places"].([]interface{}); ok {
			s.LocalResults = len(places)
		}
	}
	return s
}
