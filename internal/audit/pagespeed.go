package audit

import (
	"context"
	"time"

	"github.com/sells-group/seo-leads/internal/resilience"
	"github.com/sells-group/seo-leads/pkg/pagespeed"
)

// PageSpeedSource adapts a PageSpeed Insights client into a PerformanceSource.
// Calls go through a circuit breaker so a dead API fails fast.
type PageSpeedSource struct {
	client  pagespeed.Client
	breaker *resilience.Breaker
	timeout time.Duration
}

// NewPageSpeedSource creates a PageSpeedSource. A nil breaker disables
// breaking; a zero timeout leaves the client's own timeout in charge.
func NewPageSpeedSource(client pagespeed.Client, breaker *resilience.Breaker, timeout time.Duration) *PageSpeedSource {
	return &PageSpeedSource{client: client, breaker: breaker, timeout: timeout}
}

// Performance implements PerformanceSource.
func (p *PageSpeedSource) Performance(ctx context.Context, url string) (*Performance, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	res, err := resilience.Call(ctx, p.breaker, func(ctx context.Context) (*pagespeed.Result, error) {
		return p.client.Run(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return &Performance{
		LCP:    res.LCPSeconds,
		Score:  res.PerformanceScore,
		HasLCP: res.HasLCP,
	}, nil
}
