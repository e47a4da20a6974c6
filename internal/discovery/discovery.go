// Package discovery enumerates local business leads for an industry in a
// geography.
package discovery

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/model"
)

// Finder enumerates up to max leads for industry in geo.
type Finder interface {
	Find(ctx context.Context, geo, industry string, max int) ([]model.Lead, error)
}

// validate rejects requests no finder can serve.
func validate(geo, industry string, max int) error {
	if strings.TrimSpace(geo) == "" {
		return eris.New("discovery: geo must not be blank")
	}
	if strings.TrimSpace(industry) == "" {
		return eris.New("discovery: industry must not be blank")
	}
	if max <= 0 {
		return eris.Errorf("discovery: max must be positive, got %d", max)
	}
	return nil
}
