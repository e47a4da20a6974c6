package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/seo-leads/internal/resilience"
	"github.com/sells-group/seo-leads/pkg/pagespeed"
)

type fakePageSpeed struct {
	res   *pagespeed.Result
	err   error
	calls int
}

func (f *fakePageSpeed) Run(context.Context, string) (*pagespeed.Result, error) {
	f.calls++
	return f.res, f.err
}

func TestPageSpeedSource_Maps(t *testing.T) {
	fake := &fakePageSpeed{res: &pagespeed.Result{LCPSeconds: 2.4, PerformanceScore: 77, HasLCP: true}}
	src := NewPageSpeedSource(fake, nil, time.Second)

	p, err := src.Performance(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, &Performance{LCP: 2.4, Score: 77, HasLCP: true}, p)
}

func TestPageSpeedSource_BreakerOpens(t *testing.T) {
	fake := &fakePageSpeed{err: errors.New("503")}
	br := resilience.NewBreaker("pagespeed", resilience.BreakerConfig{FailureThreshold: 2, CoolDown: time.Hour})
	src := NewPageSpeedSource(fake, br, 0)

	for range 2 {
		_, err := src.Performance(context.Background(), "https://acme.com")
		require.Error(t, err)
	}
	_, err := src.Performance(context.Background(), "https://acme.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 2, fake.calls, "open circuit skips the call")
}
