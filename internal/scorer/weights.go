package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Weights holds the points awarded per opportunity signal.
type Weights struct {
	TrafficDecline int `yaml:"traffic_decline" mapstructure:"traffic_decline"`
	NoSchema       int `yaml:"no_schema" mapstructure:"no_schema"`
	StaleContent   int `yaml:"stale_content" mapstructure:"stale_content"`
	SlowLCP        int `yaml:"slow_lcp" mapstructure:"slow_lcp"`
	TechBonus      int `yaml:"tech_bonus" mapstructure:"tech_bonus"`
}

// DefaultWeights returns the production weights. They sum to 95.
func DefaultWeights() Weights {
	return Weights{
		TrafficDecline: 30,
		NoSchema:       25,
		StaleContent:   15,
		SlowLCP:        15,
		TechBonus:      10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() int {
	return w.TrafficDecline + w.NoSchema + w.StaleContent + w.SlowLCP + w.TechBonus
}

// ValidateWeights checks that no weight is negative.
func ValidateWeights(w Weights) error {
	var errs []string
	check := func(name string, v int) {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0, got %d", name, v))
		}
	}
	check("traffic_decline", w.TrafficDecline)
	check("no_schema", w.NoSchema)
	check("stale_content", w.StaleContent)
	check("slow_lcp", w.SlowLCP)
	check("tech_bonus", w.TechBonus)

	if len(errs) > 0 {
		return eris.Errorf("scorer: invalid weights: %s", strings.Join(errs, "; "))
	}
	return nil
}
