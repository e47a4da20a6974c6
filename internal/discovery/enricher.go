package discovery

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/scrape"
	"github.com/sells-group/seo-leads/pkg/hunter"
)

const enrichConcurrency = 4

// EmailEnricher wraps a Finder and fills missing emails from Hunter.io.
// Lookup failures leave the email blank.
type EmailEnricher struct {
	next   Finder
	client hunter.Client
}

// NewEmailEnricher creates an EmailEnricher around next.
func NewEmailEnricher(next Finder, client hunter.Client) *EmailEnricher {
	return &EmailEnricher{next: next, client: client}
}

// Find implements Finder.
func (e *EmailEnricher) Find(ctx context.Context, geo, industry string, max int) ([]model.Lead, error) {
	leads, err := e.next.Find(ctx, geo, industry, max)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i := range leads {
		if leads[i].Email != "" || !leads[i].HasWebsite() || IsPlaceholder(leads[i].Website) {
			continue
		}
		domain := scrape.Domain(leads[i].Website)
		if domain == "" {
			continue
		}
		g.Go(func() error {
			resp, err := e.client.DomainSearch(gctx, domain, 1)
			if err != nil {
				zap.L().Debug("discovery: email lookup failed",
					zap.String("domain", domain), zap.Error(err))
				return nil
			}
			leads[i].Email = resp.First()
			return nil
		})
	}
	_ = g.Wait()
	return leads, nil
}
