package pipeline

import (
	"strings"
	"time"

	"github.com/sells-group/seo-leads/internal/model"
)

// Defaults applied by NewRequest and New.
const (
	DefaultMaxLeads        = 30
	DefaultHotThreshold    = 70
	DefaultEnrichThreshold = 60
	DefaultMaxIndustries   = 5
	DefaultConcurrency     = 4
	DefaultAlertLimit      = 10
)

// Request describes one pipeline run.
type Request struct {
	Geo string
	// Industries bypasses the demand ranker when non-empty.
	Industries []string
	// AddIndustries is appended to the ranked list.
	AddIndustries []string
	MaxLeads      int
	HotThreshold  int
}

// NewRequest returns a request for geo with default limits.
func NewRequest(geo string) Request {
	return Request{Geo: geo, MaxLeads: DefaultMaxLeads, HotThreshold: DefaultHotThreshold}
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Geo) == "" {
		return &InputError{Field: "geo", Reason: "must not be blank"}
	}
	if r.MaxLeads <= 0 {
		return &InputError{Field: "max_leads", Reason: "must be positive"}
	}
	if r.HotThreshold < 0 || r.HotThreshold > 100 {
		return &InputError{Field: "hot_threshold", Reason: "must be within 0-100"}
	}
	return nil
}

// Outcome is a run's terminal result.
type Outcome string

const (
	OutcomeDone   Outcome = "done"
	OutcomeNoData Outcome = "no_data"
)

// Result is what a run produced.
type Result struct {
	RunID      string
	Geo        string
	Industries []string
	Status     model.RunStatus
	// States lists every status the run passed through, in order.
	States  []model.RunStatus
	Outcome Outcome
	// Rows is every scored row, best score first.
	Rows []model.ScoredRow
	// Hot is the prefix of Rows at or above the hot threshold.
	Hot       []model.ScoredRow
	ReportRef string
	Failures  []*CollaboratorError
	StartedAt time.Time
	Duration  time.Duration
}

// Err returns ErrNoData for a no-data run and nil otherwise.
func (r *Result) Err() error {
	if r.Outcome == OutcomeNoData {
		return ErrNoData
	}
	return nil
}

// dedupe trims names and drops blanks and case-insensitive repeats.
func dedupe(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, name := range list {
			name = strings.TrimSpace(name)
			key := strings.ToLower(name)
			if name == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, name)
		}
	}
	return out
}
