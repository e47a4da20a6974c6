// Package scorer turns a normalized site audit into a 0-100 opportunity score.
package scorer

import (
	"github.com/sells-group/seo-leads/internal/model"
)

// MaxScore caps every opportunity score.
const MaxScore = 100

// Rule awards Points when Applies holds for a lead and its audit.
type Rule struct {
	Name    string
	Points  int
	Applies func(lead model.Lead, audit model.SiteAudit) bool
}

// Rule names.
const (
	RuleTrafficDecline = "traffic_decline"
	RuleNoSchema       = "no_schema"
	RuleStaleContent   = "stale_content"
	RuleSlowLCP        = "slow_lcp"
	RuleTechBonus      = "tech_bonus"
)

// Rules builds the rule table from weights, in evaluation order.
func Rules(w Weights) []Rule {
	return []Rule{
		{
			Name:   RuleTrafficDecline,
			Points: w.TrafficDecline,
			Applies: func(_ model.Lead, a model.SiteAudit) bool {
				return a.TrafficDeclining()
			},
		},
		{
			Name:   RuleNoSchema,
			Points: w.NoSchema,
			Applies: func(_ model.Lead, a model.SiteAudit) bool {
				return !a.HasSchema
			},
		},
		{
			Name:   RuleStaleContent,
			Points: w.StaleContent,
			Applies: func(_ model.Lead, a model.SiteAudit) bool {
				return a.StaleContent()
			},
		},
		{
			Name:   RuleSlowLCP,
			Points: w.SlowLCP,
			Applies: func(_ model.Lead, a model.SiteAudit) bool {
				return a.SlowLCP()
			},
		},
		{
			// Easy-to-retrofit platforms close faster.
			Name:   RuleTechBonus,
			Points: w.TechBonus,
			Applies: func(_ model.Lead, a model.SiteAudit) bool {
				return a.TechStack.Retrofittable()
			},
		},
	}
}

var defaultRules = Rules(DefaultWeights())

// Score returns the opportunity score for a lead using the default rule table.
// It is pure and never fails.
func Score(lead model.Lead, audit model.SiteAudit) int {
	return ScoreRules(defaultRules, lead, audit)
}

// ScoreRules sums the points of every applicable rule and clamps to MaxScore.
// Rules with non-positive points contribute nothing.
func ScoreRules(rules []Rule, lead model.Lead, audit model.SiteAudit) int {
	sum := 0
	for _, r := range rules {
		if r.Points <= 0 || r.Applies == nil {
			continue
		}
		if r.Applies(lead, audit) {
			sum += r.Points
		}
	}
	return min(sum, MaxScore)
}

// Breakdown returns the names of the default rules that apply, in order.
func Breakdown(lead model.Lead, audit model.SiteAudit) []string {
	var applied []string
	for _, r := range defaultRules {
		if r.Applies(lead, audit) {
			applied = append(applied, r.Name)
		}
	}
	return applied
}
