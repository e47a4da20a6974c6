// Package store persists scored rows: a per-run archive file plus aggregate
// stores (SQLite, Postgres, Supabase) that append across runs.
package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/model"
)

//go:embed migrations
var migrationsFS embed.FS

// migrations returns the goose migration directory for a dialect.
func migrations(dialect string) (fs.FS, error) {
	sub, err := fs.Sub(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return nil, eris.Wrapf(err, "store: migrations for %s", dialect)
	}
	return sub, nil
}

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// Persister receives each run's rows exactly once.
type Persister interface {
	Append(ctx context.Context, run model.Run, rows []model.ScoredRow) error
}

// RunFinisher records a run's final status after reporting.
type RunFinisher interface {
	FinishRun(ctx context.Context, run model.Run) error
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	Geo          string
	CreatedAfter time.Time
	Limit        int
	Offset       int
}

func (f RunFilter) apply(q sq.SelectBuilder) sq.SelectBuilder {
	if f.Geo != "" {
		q = q.Where(sq.Eq{"geo": f.Geo})
	}
	if !f.CreatedAfter.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": f.CreatedAfter.UTC()})
	}
	return q
}

// RowFilter narrows ListRows.
type RowFilter struct {
	RunID    string
	MinScore int
	Limit    int
}

// Store is an aggregate store that can be read back.
type Store interface {
	Persister
	RunFinisher
	ListRuns(ctx context.Context, f RunFilter) ([]model.Run, error)
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRows(ctx context.Context, f RowFilter) ([]model.ScoredRow, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Multi fans Append and FinishRun out to every persister. Each is attempted;
// failures are joined.
type Multi []Persister

// Append implements Persister.
func (m Multi) Append(ctx context.Context, run model.Run, rows []model.ScoredRow) error {
	var errs []error
	for _, p := range m {
		if err := p.Append(ctx, run, rows); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FinishRun implements RunFinisher for the persisters that support it.
func (m Multi) FinishRun(ctx context.Context, run model.Run) error {
	var errs []error
	for _, p := range m {
		if f, ok := p.(RunFinisher); ok {
			if err := f.FinishRun(ctx, run); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

const defaultListLimit = 50

func limitOr(n int) uint64 {
	if n <= 0 {
		return defaultListLimit
	}
	return uint64(n)
}

// rowColumns is the scored_rows insert order; rowArgs matches it.
var rowColumns = []string{
	"run_id", "run_date", "geo", "industry", "business_name", "website", "email",
	"phone", "city", "address", "source", "tech_stack", "lcp", "has_schema", "has_faq",
	"has_org", "meta_title_ok", "meta_desc_ok", "content_fresh_months",
	"traffic_trend_90d", "issues", "notes", "score", "insight",
}

func rowArgs(runID string, r model.ScoredRow) ([]any, error) {
	issues, err := json.Marshal(nonNilIssues(r.Audit.Issues))
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal issues")
	}
	var insight any
	if r.Insight != nil {
		b, err := json.Marshal(r.Insight)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal insight")
		}
		insight = string(b)
	}
	a := r.Audit
	return []any{
		runID, r.RunDate, r.Geo, r.Industry, r.Lead.Name, r.Lead.Website, r.Lead.Email,
		r.Lead.Phone, r.Lead.City, r.Lead.Address, string(r.Lead.Source), string(a.TechStack),
		a.LCP, a.HasSchema, a.HasFAQ, a.HasOrg, a.MetaTitleOK, a.MetaDescOK,
		a.ContentFreshMonths, a.TrafficTrend90d, string(issues), a.Notes, r.Score, insight,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (model.ScoredRow, error) {
	var (
		r       model.ScoredRow
		source  string
		tech    string
		issues  []byte
		insight []byte
	)
	err := s.Scan(
		&r.RunID, &r.RunDate, &r.Geo, &r.Industry, &r.Lead.Name, &r.Lead.Website, &r.Lead.Email,
		&r.Lead.Phone, &r.Lead.City, &r.Lead.Address, &source, &tech,
		&r.Audit.LCP, &r.Audit.HasSchema, &r.Audit.HasFAQ, &r.Audit.HasOrg, &r.Audit.MetaTitleOK,
		&r.Audit.MetaDescOK, &r.Audit.ContentFreshMonths, &r.Audit.TrafficTrend90d,
		&issues, &r.Audit.Notes, &r.Score, &insight,
	)
	if err != nil {
		return r, eris.Wrap(err, "store: scan row")
	}
	r.Lead.Source = model.LeadSource(source)
	r.Audit.TechStack = model.TechStack(tech)
	score := r.Score
	r.Lead.Score = &score
	if err := json.Unmarshal(issues, &r.Audit.Issues); err != nil {
		return r, eris.Wrap(err, "store: decode issues")
	}
	if len(insight) > 0 {
		r.Insight = &model.Insight{}
		if err := json.Unmarshal(insight, r.Insight); err != nil {
			return r, eris.Wrap(err, "store: decode insight")
		}
	}
	return r, nil
}

func nonNilIssues(issues []string) []string {
	if issues == nil {
		return []string{}
	}
	return issues
}
