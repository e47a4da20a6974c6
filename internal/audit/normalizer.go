package audit

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/resilience"
	"github.com/sells-group/seo-leads/internal/scrape"
)

// Normalizer merges the performance, HTML, and trend signals for a website.
// Nil sources are treated as unavailable.
type Normalizer struct {
	perf     PerformanceSource
	inspect  Inspector
	trend    TrendSource
	observer Observer
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithObserver reports every source outcome to fn.
func WithObserver(fn Observer) Option {
	return func(n *Normalizer) { n.observer = fn }
}

// NewNormalizer creates a Normalizer from its sources.
func NewNormalizer(perf PerformanceSource, inspect Inspector, trend TrendSource, opts ...Option) *Normalizer {
	n := &Normalizer{perf: perf, inspect: inspect, trend: trend}
	for _, o := range opts {
		o(n)
	}
	if n.trend == nil {
		n.trend = ZeroTrend{}
	}
	return n
}

// Evaluate audits website. A blank website yields model.EmptyAudit. Source
// failures are absorbed into defaults and noted; the only error is context
// cancellation.
func (n *Normalizer) Evaluate(ctx context.Context, website string) (model.SiteAudit, error) {
	url := scrape.NormalizeURL(website)
	if url == "" {
		return model.EmptyAudit(), nil
	}
	if err := ctx.Err(); err != nil {
		return model.SiteAudit{}, eris.Wrap(err, "audit: evaluate")
	}

	log := zap.L().With(zap.String("website", url))

	var (
		wg     sync.WaitGroup
		perf   *Performance
		st     *Structure
		trend  int
		failed = map[string]bool{}
		mu     sync.Mutex
	)
	fail := func(source string, err error) {
		log.Debug("audit: source unavailable",
			zap.String("source", source),
			zap.Bool("timeout", resilience.IsTimeout(err)),
			zap.Error(err),
		)
		mu.Lock()
		failed[source] = true
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		if n.perf == nil {
			fail(SourcePageSpeed, eris.New("not configured"))
			return
		}
		p, err := n.perf.Performance(ctx, url)
		if err != nil || p == nil {
			fail(SourcePageSpeed, err)
			return
		}
		perf = p
	}()
	go func() {
		defer wg.Done()
		if n.inspect == nil {
			fail(SourceHTML, eris.New("not configured"))
			return
		}
		s, err := n.inspect.Inspect(ctx, url)
		if err != nil || s == nil {
			fail(SourceHTML, err)
			return
		}
		st = s
	}()
	go func() {
		defer wg.Done()
		t, err := n.trend.Trend(ctx, url)
		if err != nil {
			fail(SourceTrend, err)
			return
		}
		trend = t
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return model.SiteAudit{}, eris.Wrap(err, "audit: evaluate")
	}

	for _, src := range []string{SourcePageSpeed, SourceHTML, SourceTrend} {
		if n.observer != nil {
			n.observer(src, !failed[src])
		}
	}

	a := Merge(perf, st, trend)
	a.Notes = notes(perf, failed)
	return a, nil
}

// Merge builds an audit from whichever signals are present and derives its
// issues. Nil signals take their defaults.
func Merge(perf *Performance, st *Structure, trend int) model.SiteAudit {
	a := model.SiteAudit{
		LCP:             model.DefaultLCPSeconds,
		TechStack:       model.TechUnknown,
		TrafficTrend90d: trend,
	}
	if perf != nil && perf.HasLCP {
		a.LCP = perf.LCP
	}
	if st != nil {
		a.HasSchema = st.HasSchema
		a.HasFAQ = st.HasFAQ
		a.HasOrg = st.HasOrg
		a.MetaTitleOK = st.MetaTitleOK
		a.MetaDescOK = st.MetaDescOK
		a.ContentFreshMonths = max(st.ContentFreshMonths, 0)
		if st.TechStack != "" {
			a.TechStack = st.TechStack
		}
	}
	a.Issues = model.DeriveIssues(a)
	return a
}

func notes(perf *Performance, failed map[string]bool) string {
	var parts []string
	if perf != nil {
		parts = append(parts, model.PerformanceNotePrefix+strconv.Itoa(perf.Score))
	}
	for _, src := range []string{SourceHTML, SourcePageSpeed, SourceTrend} {
		if failed[src] {
			parts = append(parts, src+" unavailable")
		}
	}
	return strings.Join(parts, "; ")
}
