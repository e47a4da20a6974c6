// Package pagespeed wraps the PageSpeed Insights v5 API.
package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/seo-leads/internal/resilience"
)

const defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5"

// Strategies accepted by the API.
const (
	StrategyMobile  = "mobile"
	StrategyDesktop = "desktop"
)

// Client runs PageSpeed Insights analyses.
type Client interface {
	Run(ctx context.Context, pageURL string) (*Result, error)
}

// Result is the subset of a Lighthouse run the audit needs.
type Result struct {
	// LCPSeconds is the largest contentful paint in seconds.
	LCPSeconds float64
	// PerformanceScore is the Lighthouse performance category score, 0-100.
	PerformanceScore int
	// HasLCP is false when Lighthouse omitted the LCP audit.
	HasLCP bool
}

type runResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]struct {
			NumericValue *float64 `json:"numericValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithStrategy selects mobile or desktop analysis.
func WithStrategy(s string) Option {
	return func(c *httpClient) {
		if s != "" {
			c.strategy = s
		}
	}
}

// WithRateLimit throttles requests to rps per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	strategy string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a PageSpeed Insights client. An empty key uses the
// anonymous quota.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		strategy: StrategyMobile,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Run(ctx context.Context, pageURL string) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "pagespeed: rate limit")
		}
	}

	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("strategy", c.strategy)
	q.Set("category", "performance")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/runPagespeed?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("pagespeed: run %s", pageURL))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.NewStatusError("pagespeed", resp.StatusCode, body)
	}

	var raw runResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "pagespeed: unmarshal response")
	}

	out := &Result{}
	if lcp, ok := raw.LighthouseResult.Audits["largest-contentful-paint"]; ok && lcp.NumericValue != nil {
		out.LCPSeconds = math.Round(*lcp.NumericValue/10) / 100
		out.HasLCP = true
	}
	if s := raw.LighthouseResult.Categories.Performance.Score; s != nil {
		out.PerformanceScore = int(math.Round(*s * 100))
	}
	return out, nil
}

