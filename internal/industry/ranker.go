// Package industry ranks candidate industries by SEO opportunity in a
// geography: search demand discounted by how saturated the niche already is.
package industry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultPenalty applies to industries without a configured penalty.
const DefaultPenalty = 1.0

// DefaultPenalties discounts niches whose sites tend to be optimized already.
var DefaultPenalties = map[string]float64{
	"law firms":    0.8,
	"auto dealers": 0.8,
	"medspas":      0.8,
}

// InputError reports an invalid ranking request.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("industry: invalid %s: %s", e.Field, e.Reason)
}

// Score is one ranked industry.
type Score struct {
	Name        string  `json:"name"`
	Demand      float64 `json:"demand"`
	Penalty     float64 `json:"penalty"`
	Opportunity float64 `json:"opportunity"`
	Degraded    bool    `json:"degraded,omitempty"`
}

// Ranker orders industries by demand × penalty.
type Ranker struct {
	demand    DemandSource
	fallback  DemandSource
	penalties map[string]float64
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithPenalties replaces the penalty map. Keys match case-insensitively.
func WithPenalties(p map[string]float64) RankerOption {
	return func(r *Ranker) {
		r.penalties = make(map[string]float64, len(p))
		for k, v := range p {
			r.penalties[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
}

// WithFallback sets the demand source used when the primary fails.
func WithFallback(d DemandSource) RankerOption {
	return func(r *Ranker) { r.fallback = d }
}

// NewRanker creates a Ranker. A nil demand source means StubDemand.
func NewRanker(demand DemandSource, opts ...RankerOption) *Ranker {
	r := &Ranker{demand: demand, fallback: StubDemand{}}
	WithPenalties(DefaultPenalties)(r)
	for _, o := range opts {
		o(r)
	}
	if r.demand == nil {
		r.demand = StubDemand{}
	}
	return r
}

// Penalty returns the saturation discount for industry.
func (r *Ranker) Penalty(industry string) float64 {
	if p, ok := r.penalties[strings.ToLower(strings.TrimSpace(industry))]; ok {
		return p
	}
	return DefaultPenalty
}

// Rank returns the names of the top k candidates for geo, best first.
func (r *Ranker) Rank(ctx context.Context, geo string, candidates []string, k int) ([]string, error) {
	scores, err := r.Scores(ctx, geo, candidates, k)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(scores))
	for i, s := range scores {
		names[i] = s.Name
	}
	return names, nil
}

// Scores is Rank with the per-industry breakdown. Ties keep candidate order.
func (r *Ranker) Scores(ctx context.Context, geo string, candidates []string, k int) ([]Score, error) {
	if strings.TrimSpace(geo) == "" {
		return nil, &InputError{Field: "geo", Reason: "must not be blank"}
	}
	if k <= 0 {
		return nil, &InputError{Field: "k", Reason: fmt.Sprintf("must be positive, got %d", k)}
	}

	log := zap.L().With(zap.String("geo", geo))
	scores := make([]Score, 0, len(candidates))
	for _, name := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := Score{Name: name, Penalty: r.Penalty(name)}
		d, err := r.demand.Demand(ctx, geo, name)
		if err != nil {
			log.Warn("industry: demand lookup failed, using stub",
				zap.String("industry", name), zap.Error(err))
			d, _ = r.fallback.Demand(ctx, geo, name)
			s.Degraded = true
		}
		s.Demand = d
		s.Opportunity = d * s.Penalty
		scores = append(scores, s)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Opportunity > scores[j].Opportunity
	})
	if k < len(scores) {
		scores = scores[:k]
	}
	log.Info("industry: ranked", zap.Int("candidates", len(candidates)), zap.Int("k", k))
	return scores, nil
}
