// Package audit turns collaborator signals about a website into a fully
// populated model.SiteAudit.
//
// Every source is optional and fails soft: a missing or failing source leaves
// its fields at defaults that never pass a check and never raise an issue by
// themselves (booleans false, LCP 3.0, trend 0).
package audit

import (
	"context"

	"github.com/sells-group/seo-leads/internal/model"
)

// Source names used in notes, logs, and metrics.
const (
	SourcePageSpeed = "pagespeed"
	SourceHTML      = "html"
	SourceTrend     = "trend"
)

// Performance is the page-speed signal for one URL.
type Performance struct {
	LCP    float64
	Score  int
	HasLCP bool
}

// PerformanceSource measures page performance.
type PerformanceSource interface {
	Performance(ctx context.Context, url string) (*Performance, error)
}

// Structure is the HTML-derived signal for one URL.
type Structure struct {
	HasSchema          bool
	HasFAQ             bool
	HasOrg             bool
	MetaTitleOK        bool
	MetaDescOK         bool
	TechStack          model.TechStack
	ContentFreshMonths int
}

// Inspector derives structural signals from a page.
type Inspector interface {
	Inspect(ctx context.Context, url string) (*Structure, error)
}

// TrendSource reports the signed 90-day organic traffic trend in percent.
type TrendSource interface {
	Trend(ctx context.Context, url string) (int, error)
}

// Observer is notified of each source outcome.
type Observer func(source string, ok bool)
