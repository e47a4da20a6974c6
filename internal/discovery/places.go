package discovery

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/pkg/google"
)

// maxPages bounds pagination; Places stops at 60 results anyway.
const maxPages = 3

// PlacesFinder discovers businesses with Google Places text search.
type PlacesFinder struct {
	client google.Client
}

// NewPlacesFinder creates a PlacesFinder.
func NewPlacesFinder(client google.Client) *PlacesFinder {
	return &PlacesFinder{client: client}
}

// Find implements Finder. Permanently closed places are skipped.
func (f *PlacesFinder) Find(ctx context.Context, geo, industry string, max int) ([]model.Lead, error) {
	if err := validate(geo, industry, max); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("geo", geo), zap.String("industry", industry))
	city := model.CityFromGeo(geo)
	query := industry + " in " + geo

	var (
		leads []model.Lead
		token string
	)
	for page := 0; page < maxPages && len(leads) < max; page++ {
		resp, err := f.client.TextSearch(ctx, google.TextSearchRequest{
			TextQuery: query,
			PageSize:  min(max-len(leads), google.MaxPageSize),
			PageToken: token,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "discovery: places search %q", query)
		}
		for _, p := range resp.Places {
			if p.Closed() {
				continue
			}
			lead := model.NewLead(p.DisplayName.Text, model.SourceGooglePlaces)
			lead.Website = p.WebsiteURI
			lead.Phone = p.NationalPhoneNumber
			lead.Address = p.FormattedAddress
			lead.City = city
			leads = append(leads, lead)
			if len(leads) == max {
				break
			}
		}
		token = resp.NextPageToken
		if token == "" {
			break
		}
	}

	log.Info("discovery: places search complete", zap.Int("leads", len(leads)))
	return leads, nil
}
