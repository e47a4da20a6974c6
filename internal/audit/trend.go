package audit

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/rotisserie/eris"
)

// Trend source names accepted by NewTrendSource.
const (
	TrendZero   = "zero"
	TrendRandom = "random"
)

// ZeroTrend reports a flat trend for every site. Real traffic measurement is
// not wired, so this is the production default.
type ZeroTrend struct{}

// Trend implements TrendSource.
func (ZeroTrend) Trend(context.Context, string) (int, error) { return 0, nil }

// randomTrendValues are the placeholder trends the demo picks from.
var randomTrendValues = []int{-35, -20, -10, 0, 5, 15}

// RandomTrend picks a placeholder trend per call, for demos only.
type RandomTrend struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomTrend creates a RandomTrend with a fixed seed so runs repeat.
func NewRandomTrend(seed uint64) *RandomTrend {
	return &RandomTrend{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Trend implements TrendSource.
func (r *RandomTrend) Trend(context.Context, string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return randomTrendValues[r.rng.IntN(len(randomTrendValues))], nil
}

// FixedTrend reports the same trend for every site.
type FixedTrend int

// Trend implements TrendSource.
func (f FixedTrend) Trend(context.Context, string) (int, error) { return int(f), nil }

// NewTrendSource builds the trend source named in configuration.
func NewTrendSource(name string, seed uint64) (TrendSource, error) {
	switch name {
	case "", TrendZero:
		return ZeroTrend{}, nil
	case TrendRandom:
		return NewRandomTrend(seed), nil
	default:
		return nil, eris.Errorf("audit: unknown trend source %q", name)
	}
}
