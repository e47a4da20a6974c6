package discovery

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/seo-leads/internal/model"
)

// StubFinder fabricates placeholder directory listings. It is used when no
// Places key is configured so the rest of a run can still be exercised.
type StubFinder struct{}

// Find implements Finder.
func (StubFinder) Find(_ context.Context, geo, industry string, max int) ([]model.Lead, error) {
	if err := validate(geo, industry, max); err != nil {
		return nil, err
	}
	title := cases.Title(language.English).String(industry)
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(industry)), " ", "-")
	city := model.CityFromGeo(geo)

	leads := make([]model.Lead, max)
	for i := range leads {
		l := model.NewLead(fmt.Sprintf("%s Biz %d", title, i+1), model.SourceDirectoryStub)
		l.Website = fmt.Sprintf("https://www.example-%s-%d.com", slug, i+1)
		l.City = city
		leads[i] = l
	}
	return leads, nil
}

// IsPlaceholder reports whether website belongs to a fabricated listing.
func IsPlaceholder(website string) bool {
	return strings.Contains(strings.ToLower(website), "example")
}
