package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/seo-leads/internal/model"
)

type perfFunc func(ctx context.Context, url string) (*Performance, error)

func (f perfFunc) Performance(ctx context.Context, url string) (*Performance, error) {
	return f(ctx, url)
}

type inspectFunc func(ctx context.Context, url string) (*Structure, error)

func (f inspectFunc) Inspect(ctx context.Context, url string) (*Structure, error) {
	return f(ctx, url)
}

type trendFunc func(ctx context.Context, url string) (int, error)

func (f trendFunc) Trend(ctx context.Context, url string) (int, error) { return f(ctx, url) }

func fixedPerf(lcp float64, score int) PerformanceSource {
	return perfFunc(func(context.Context, string) (*Performance, error) {
		return &Performance{LCP: lcp, Score: score, HasLCP: true}, nil
	})
}

func fixedStructure(st Structure) Inspector {
	return inspectFunc(func(context.Context, string) (*Structure, error) {
		return &st, nil
	})
}

var errDown = errors.New("down")

func TestEvaluate_BlankWebsite(t *testing.T) {
	called := false
	n := NewNormalizer(perfFunc(func(context.Context, string) (*Performance, error) {
		called = true
		return nil, nil
	}), nil, nil)

	a, err := n.Evaluate(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, model.EmptyAudit(), a)
	assert.False(t, called)
}

func TestEvaluate_AllSources(t *testing.T) {
	var gotURL string
	n := NewNormalizer(
		perfFunc(func(_ context.Context, url string) (*Performance, error) {
			gotURL = url
			return &Performance{LCP: 4.2, Score: 38, HasLCP: true}, nil
		}),
		fixedStructure(Structure{HasFAQ: true, TechStack: model.TechCustom, ContentFreshMonths: 14}),
		FixedTrend(-25),
	)

	a, err := n.Evaluate(context.Background(), "acmeplumbing.com")
	require.NoError(t, err)
	assert.Equal(t, "https://acmeplumbing.com", gotURL)
	assert.InDelta(t, 4.2, a.LCP, 0.0001)
	assert.False(t, a.HasSchema)
	assert.True(t, a.HasFAQ)
	assert.Equal(t, 14, a.ContentFreshMonths)
	assert.Equal(t, -25, a.TrafficTrend90d)
	assert.Equal(t, model.TechCustom, a.TechStack)
	assert.Equal(t, []string{model.IssueSlowLCP, model.IssueNoSchema, model.IssueStaleContent, model.IssueTrafficDecline}, a.Issues)
	assert.Equal(t, "Performance Score: 38", a.Notes)
}

func TestEvaluate_AllSourcesFail(t *testing.T) {
	n := NewNormalizer(
		perfFunc(func(context.Context, string) (*Performance, error) { return nil, errDown }),
		inspectFunc(func(context.Context, string) (*Structure, error) { return nil, errDown }),
		trendFunc(func(context.Context, string) (int, error) { return 0, errDown }),
	)

	a, err := n.Evaluate(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLCPSeconds, a.LCP)
	assert.False(t, a.HasSchema, "absent evidence never passes")
	assert.False(t, a.HasFAQ)
	assert.False(t, a.HasOrg)
	assert.False(t, a.MetaTitleOK)
	assert.False(t, a.MetaDescOK)
	assert.Zero(t, a.ContentFreshMonths)
	assert.Zero(t, a.TrafficTrend90d)
	assert.Equal(t, model.TechUnknown, a.TechStack)
	assert.Equal(t, []string{model.IssueNoSchema}, a.Issues)
	assert.Equal(t, "html unavailable; pagespeed unavailable; trend unavailable", a.Notes)
}

func TestEvaluate_NilSources(t *testing.T) {
	a, err := NewNormalizer(nil, nil, nil).Evaluate(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLCPSeconds, a.LCP)
	assert.Equal(t, "html unavailable; pagespeed unavailable", a.Notes)
}

func TestEvaluate_PerformanceWithoutLCP(t *testing.T) {
	n := NewNormalizer(
		perfFunc(func(context.Context, string) (*Performance, error) {
			return &Performance{Score: 90}, nil
		}),
		fixedStructure(Structure{HasSchema: true, TechStack: model.TechWix}),
		nil,
	)

	a, err := n.Evaluate(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLCPSeconds, a.LCP)
	assert.Empty(t, a.Issues)
	assert.NotNil(t, a.Issues)
	assert.Equal(t, "Performance Score: 90", a.Notes)
}

func TestEvaluate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNormalizer(fixedPerf(1, 1), nil, nil).Evaluate(ctx, "https://acme.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate_Observer(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	n := NewNormalizer(fixedPerf(2, 90), nil, nil, WithObserver(func(source string, ok bool) {
		mu.Lock()
		seen[source] = ok
		mu.Unlock()
	}))

	_, err := n.Evaluate(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{SourcePageSpeed: true, SourceHTML: false, SourceTrend: true}, seen)
}

func TestMerge_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		perf   *Performance
		st     *Structure
		trend  int
		issues []string
	}{
		{"lcp at threshold", &Performance{LCP: 3.0, HasLCP: true}, &Structure{HasSchema: true}, 0, []string{}},
		{"lcp above threshold", &Performance{LCP: 3.01, HasLCP: true}, &Structure{HasSchema: true}, 0, []string{model.IssueSlowLCP}},
		{"eleven months", nil, &Structure{HasSchema: true, ContentFreshMonths: 11}, 0, []string{}},
		{"twelve months", nil, &Structure{HasSchema: true, ContentFreshMonths: 12}, 0, []string{model.IssueStaleContent}},
		{"trend -19", nil, &Structure{HasSchema: true}, -19, []string{}},
		{"trend -20", nil, &Structure{HasSchema: true}, -20, []string{model.IssueTrafficDecline}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.issues, Merge(tt.perf, tt.st, tt.trend).Issues)
		})
	}
}

func TestMerge_NegativeFreshnessClamped(t *testing.T) {
	a := Merge(nil, &Structure{ContentFreshMonths: -3}, 0)
	assert.Zero(t, a.ContentFreshMonths)
	assert.Equal(t, model.TechUnknown, a.TechStack)
}
