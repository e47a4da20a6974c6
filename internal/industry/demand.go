package industry

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/pkg/dataforseo"
	"github.com/sells-group/seo-leads/pkg/serp"
)

// MaxDemand caps any demand estimate.
const MaxDemand = 1000.0

// DemandSource estimates search demand for an industry in a geography.
type DemandSource interface {
	Demand(ctx context.Context, geo, industry string) (float64, error)
}

// SerpDemand derives demand from a "{industry} near me" Google result page.
type SerpDemand struct {
	client serp.Client
}

// NewSerpDemand creates a SerpDemand backed by client.
func NewSerpDemand(client serp.Client) *SerpDemand {
	return &SerpDemand{client: client}
}

// Demand implements DemandSource.
func (s *SerpDemand) Demand(ctx context.Context, geo, industry string) (float64, error) {
	sum, err := s.client.Search(ctx, industry+" near me", geo)
	if err != nil {
		return 0, eris.Wrapf(err, "industry: serp demand for %q", industry)
	}
	return SerpScore(sum), nil
}

// SerpScore converts search counts to demand: results/10000 plus 50 per ad
// and 20 per local result, capped at MaxDemand.
func SerpScore(sum *serp.Summary) float64 {
	if sum == nil {
		return 0
	}
	score := float64(sum.TotalResults)/10000 + float64(sum.Ads)*50 + float64(sum.LocalResults)*20
	return min(score, MaxDemand)
}

// DataForSEODemand derives demand from a DataForSEO organic SERP for
// "{industry} near me" at the geo's city. Location codes are cached per city.
type DataForSEODemand struct {
	client dataforseo.Client

	mu        sync.Mutex
	locations map[string]int
}

// NewDataForSEODemand creates a DataForSEODemand backed by client.
func NewDataForSEODemand(client dataforseo.Client) *DataForSEODemand {
	return &DataForSEODemand{client: client, locations: map[string]int{}}
}

// Demand implements DemandSource.
func (d *DataForSEODemand) Demand(ctx context.Context, geo, industry string) (float64, error) {
	code, err := d.locationCode(ctx, geo)
	if err != nil {
		return 0, err
	}
	res, err := d.client.OrganicLive(ctx, dataforseo.Task{
		Keyword:      industry + " near me",
		LocationCode: code,
		LanguageCode: "en",
		Device:       "desktop",
		OS:           "windows",
	})
	if err != nil {
		return 0, eris.Wrapf(err, "industry: dataforseo demand for %q", industry)
	}
	return DataForSEOScore(res), nil
}

func (d *DataForSEODemand) locationCode(ctx context.Context, geo string) (int, error) {
	city := strings.TrimSpace(strings.Split(geo, ",")[0])
	key := strings.ToLower(city)

	d.mu.Lock()
	code, ok := d.locations[key]
	d.mu.Unlock()
	if ok {
		return code, nil
	}

	locs, err := d.client.Locations(ctx, city)
	if err != nil {
		return 0, eris.Wrapf(err, "industry: dataforseo location for %q", geo)
	}
	if len(locs) == 0 {
		return 0, eris.Errorf("industry: no dataforseo location for %q", geo)
	}
	zap.L().Debug("industry: dataforseo location",
		zap.String("geo", geo),
		zap.String("location", locs[0].Name),
		zap.Int("code", locs[0].Code),
	)

	d.mu.Lock()
	d.locations[key] = locs[0].Code
	d.mu.Unlock()
	return locs[0].Code, nil
}

// DataForSEOScore converts a SERP to demand: results/10000 plus 50 per ad,
// 100 per local pack and 5 per organic result, capped at MaxDemand.
func DataForSEOScore(res *dataforseo.SerpResult) float64 {
	if res == nil {
		return 0
	}
	score := float64(res.TotalResults)/10000 +
		float64(res.Count(dataforseo.ItemPaid))*50 +
		float64(res.Count(dataforseo.ItemLocalPack))*100 +
		float64(res.Count(dataforseo.ItemOrganic))*5
	return min(score, MaxDemand)
}

// ChainDemand asks each source in order and returns the first answer.
type ChainDemand []DemandSource

// Demand implements DemandSource.
func (c ChainDemand) Demand(ctx context.Context, geo, industry string) (float64, error) {
	var lastErr error
	for i, src := range c {
		d, err := src.Demand(ctx, geo, industry)
		if err == nil {
			return d, nil
		}
		if ctx.Err() != nil {
			return 0, err
		}
		if i < len(c)-1 {
			zap.L().Warn("industry: demand source failed, trying next",
				zap.String("industry", industry),
				zap.Error(err),
			)
		}
		lastErr = err
	}
	if lastErr == nil {
		return 0, eris.New("industry: no demand sources")
	}
	return 0, lastErr
}

// StubDemand is a deterministic placeholder demand in [100, 400).
type StubDemand struct{}

// Demand implements DemandSource.
func (StubDemand) Demand(_ context.Context, geo, industry string) (float64, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(industry) + "|" + strings.ToLower(geo)))
	return float64(100 + h.Sum32()%300), nil
}
