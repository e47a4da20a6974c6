// Package pipeline runs one lead-generation pass for a geography: pick
// industries, enumerate leads, audit and score each site, enrich the
// promising ones, then persist, report, and alert.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/seo-leads/internal/discovery"
	"github.com/sells-group/seo-leads/internal/enrich"
	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/report"
	"github.com/sells-group/seo-leads/internal/scorer"
	"github.com/sells-group/seo-leads/internal/store"
)

// Ranker orders candidate industries by opportunity.
type Ranker interface {
	Rank(ctx context.Context, geo string, candidates []string, k int) ([]string, error)
}

// Auditor turns a website into a normalized audit.
type Auditor interface {
	Evaluate(ctx context.Context, website string) (model.SiteAudit, error)
}

// Notifier receives the best hot rows of a run.
type Notifier interface {
	NotifyHotLeads(ctx context.Context, run model.Run, rows []model.ScoredRow) error
}

// Recorder receives run and lead timings.
type Recorder interface {
	ObserveLead(d time.Duration)
	ObserveRun(status model.RunStatus, rows, hot int, d time.Duration)
}

// Deps are the pipeline's collaborators. Finder and Auditor are required;
// the rest are skipped when nil.
type Deps struct {
	Ranker    Ranker
	Catalog   []string
	Finder    discovery.Finder
	Auditor   Auditor
	Analyzer  enrich.Analyzer
	Persister store.Persister
	Sink      report.Sink
	Notifier  Notifier
	Recorder  Recorder
}

// Options tune a pipeline. Zero values take the package defaults.
type Options struct {
	MaxIndustries   int
	Concurrency     int
	EnrichThreshold int
	AlertLimit      int
	// LeadTimeout bounds one lead's audit and enrichment. Zero leaves it to
	// the collaborators' own timeouts.
	LeadTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxIndustries <= 0 {
		o.MaxIndustries = DefaultMaxIndustries
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.EnrichThreshold <= 0 {
		o.EnrichThreshold = DefaultEnrichThreshold
	}
	if o.AlertLimit <= 0 {
		o.AlertLimit = DefaultAlertLimit
	}
	return o
}

// Pipeline orchestrates one run.
type Pipeline struct {
	deps  Deps
	opts  Options
	now   func() time.Time
	newID func() string
}

// New creates a Pipeline.
func New(deps Deps, opts Options) *Pipeline {
	return &Pipeline{
		deps:  deps,
		opts:  opts.withDefaults(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

type job struct {
	industry string
	lead     model.Lead
}

// Run executes one pass. A no-data run returns a Result with OutcomeNoData
// and a nil error. Errors are input errors or cancellation; collaborator
// failures are isolated and listed on Result.Failures.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if p.deps.Finder == nil || p.deps.Auditor == nil {
		return nil, eris.New("pipeline: finder and auditor are required")
	}

	start := p.now()
	res := &Result{RunID: p.newID(), Geo: req.Geo, StartedAt: start}
	log := zap.L().With(zap.String("run_id", res.RunID), zap.String("geo", req.Geo))

	set := func(s model.RunStatus) {
		res.Status = s
		res.States = append(res.States, s)
		log.Info("pipeline: status", zap.String("status", string(s)))
	}
	finish := func(s model.RunStatus) {
		set(s)
		res.Duration = p.now().Sub(start)
		if p.deps.Recorder != nil {
			p.deps.Recorder.ObserveRun(s, len(res.Rows), len(res.Hot), res.Duration)
		}
	}
	abort := func(err error) (*Result, error) {
		finish(model.RunStatusFailed)
		log.Error("pipeline: run aborted", zap.Error(err))
		return res, err
	}
	noData := func() (*Result, error) {
		res.Outcome = OutcomeNoData
		finish(model.RunStatusNoData)
		log.Warn("pipeline: no leads found", zap.Strings("industries", res.Industries))
		return res, nil
	}

	set(model.RunStatusDiscovering)
	industries, err := p.industries(ctx, req)
	if err != nil {
		return abort(err)
	}
	res.Industries = industries
	if len(industries) == 0 {
		return noData()
	}

	set(model.RunStatusEnumerating)
	jobs := p.enumerate(ctx, req, res, log)
	if err := ctx.Err(); err != nil {
		return abort(eris.Wrap(err, "pipeline: enumerate leads"))
	}
	if len(jobs) == 0 {
		return noData()
	}

	set(model.RunStatusEvaluating)
	rows, err := p.evaluateAll(ctx, req.Geo, start.Format(model.RunDateLayout), jobs, res)
	if err != nil {
		return abort(err)
	}
	sortRows(rows)
	res.Rows = rows
	res.Hot = hotPrefix(rows, req.HotThreshold)

	run := model.Run{
		ID:         res.RunID,
		Geo:        req.Geo,
		Industries: industries,
		Status:     model.RunStatusPersisting,
		RowCount:   len(rows),
		HotCount:   len(res.Hot),
		CreatedAt:  start.UTC(),
	}

	set(model.RunStatusPersisting)
	if p.deps.Persister != nil {
		if err := p.deps.Persister.Append(ctx, run, rows); err != nil {
			res.fail(log, StagePersistence, "rows", err)
		}
	}

	set(model.RunStatusAlerting)
	if len(res.Hot) > 0 {
		p.reportAndAlert(ctx, &run, res, log)
	}

	res.Outcome = OutcomeDone
	finish(model.RunStatusDone)
	run.Status = model.RunStatusDone
	run.ReportRef = res.ReportRef
	if f, ok := p.deps.Persister.(store.RunFinisher); ok {
		if err := f.FinishRun(ctx, run); err != nil {
			res.fail(log, StagePersistence, "finish run", err)
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("rows", len(res.Rows)),
		zap.Int("hot", len(res.Hot)),
		zap.Int("failures", len(res.Failures)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// industries returns the explicit list, or the ranked catalog plus extras.
func (p *Pipeline) industries(ctx context.Context, req Request) ([]string, error) {
	if len(req.Industries) > 0 {
		return dedupe(req.Industries), nil
	}
	var ranked []string
	if p.deps.Ranker != nil {
		var err error
		ranked, err = p.deps.Ranker.Rank(ctx, req.Geo, p.deps.Catalog, p.opts.MaxIndustries)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: rank industries")
		}
	} else {
		ranked = p.deps.Catalog[:min(p.opts.MaxIndustries, len(p.deps.Catalog))]
	}
	return dedupe(ranked, req.AddIndustries), nil
}

// enumerate finds leads per industry. A failing industry is recorded and
// skipped.
func (p *Pipeline) enumerate(ctx context.Context, req Request, res *Result, log *zap.Logger) []job {
	var jobs []job
	for _, industry := range res.Industries {
		if ctx.Err() != nil {
			return nil
		}
		leads, err := p.deps.Finder.Find(ctx, req.Geo, industry, req.MaxLeads)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			res.fail(log, StageDiscovery, industry, err)
			continue
		}
		if len(leads) > req.MaxLeads {
			leads = leads[:req.MaxLeads]
		}
		log.Info("pipeline: leads found", zap.String("industry", industry), zap.Int("count", len(leads)))
		for _, l := range leads {
			jobs = append(jobs, job{industry: industry, lead: l})
		}
	}
	return jobs
}

// evaluateAll scores every job with bounded concurrency. Results land at
// their job's index so output order never depends on completion order.
func (p *Pipeline) evaluateAll(ctx context.Context, geo, runDate string, jobs []job, res *Result) ([]model.ScoredRow, error) {
	rows := make([]model.ScoredRow, len(jobs))
	failures := make([][]*CollaboratorError, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, fails, err := p.evaluate(gctx, geo, runDate, j)
			if err != nil {
				return err
			}
			row.RunID = res.RunID
			rows[i] = row
			failures[i] = fails
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: evaluate leads")
	}

	log := zap.L().With(zap.String("run_id", res.RunID))
	for _, fs := range failures {
		for _, f := range fs {
			res.Failures = append(res.Failures, f)
			log.Warn("pipeline: lead degraded",
				zap.String("stage", string(f.Stage)),
				zap.String("unit", f.Unit),
				zap.Error(f.Err),
			)
		}
	}
	return rows, nil
}

// EvaluateLead audits, scores, and maybe enriches a single lead outside of a
// run. Collaborator failures degrade the row and are returned alongside it.
func (p *Pipeline) EvaluateLead(ctx context.Context, geo, industry string, lead model.Lead) (model.ScoredRow, []*CollaboratorError, error) {
	if p.deps.Auditor == nil {
		return model.ScoredRow{}, nil, eris.New("pipeline: auditor is required")
	}
	return p.evaluate(ctx, geo, p.now().Format(model.RunDateLayout), job{industry: industry, lead: lead})
}

// evaluate audits, scores, and maybe enriches one lead. The returned error is
// only ever cancellation of ctx; collaborator failures degrade the row.
func (p *Pipeline) evaluate(ctx context.Context, geo, runDate string, j job) (model.ScoredRow, []*CollaboratorError, error) {
	start := p.now()
	if p.deps.Recorder != nil {
		defer func() { p.deps.Recorder.ObserveLead(p.now().Sub(start)) }()
	}

	leadCtx := ctx
	if p.opts.LeadTimeout > 0 {
		var cancel context.CancelFunc
		leadCtx, cancel = context.WithTimeout(ctx, p.opts.LeadTimeout)
		defer cancel()
	}

	row := model.ScoredRow{RunDate: runDate, Geo: geo, Industry: j.industry, Lead: j.lead}
	unit := j.industry + "/" + j.lead.Name

	audit, err := p.deps.Auditor.Evaluate(leadCtx, j.lead.Website)
	if err != nil {
		if ctx.Err() != nil {
			return row, nil, ctx.Err()
		}
		row.Audit = failedAudit(err)
		row.Lead = row.Lead.WithScore(0)
		return row, []*CollaboratorError{{Stage: StageEvaluation, Unit: unit, Err: err}}, nil
	}

	row.Audit = audit
	// A lead without a site has no audit to sell against.
	if j.lead.HasWebsite() {
		row.Score = scorer.Score(j.lead, audit)
	}
	row.Lead = row.Lead.WithScore(row.Score)

	if p.deps.Analyzer == nil || row.Score < p.opts.EnrichThreshold || !j.lead.HasWebsite() {
		return row, nil, nil
	}
	ins, err := p.deps.Analyzer.Analyze(leadCtx, enrich.Target{
		URL:          j.lead.Website,
		BusinessName: j.lead.Name,
		Industry:     j.industry,
	})
	if err != nil {
		if ctx.Err() != nil {
			return row, nil, ctx.Err()
		}
		return row, []*CollaboratorError{{Stage: StageEnrichment, Unit: unit, Err: err}}, nil
	}
	if !ins.Empty() {
		row.Insight = ins
	}
	return row, nil, nil
}

// reportAndAlert stores the hot-lead report and notifies, both best-effort.
func (p *Pipeline) reportAndAlert(ctx context.Context, run *model.Run, res *Result, log *zap.Logger) {
	if p.deps.Sink != nil {
		rep := report.Build(res.Hot, res.Geo, res.StartedAt)
		ref, err := p.deps.Sink.Store(ctx, rep)
		if err != nil {
			res.fail(log, StageReport, rep.Title, err)
		} else {
			res.ReportRef = ref
			run.ReportRef = ref
			log.Info("pipeline: report stored", zap.String("ref", ref))
		}
	}
	if p.deps.Notifier != nil {
		top := res.Hot[:min(p.opts.AlertLimit, len(res.Hot))]
		if err := p.deps.Notifier.NotifyHotLeads(ctx, *run, top); err != nil {
			res.fail(log, StageAlert, "hot leads", err)
		}
	}
}

func (r *Result) fail(log *zap.Logger, stage Stage, unit string, err error) {
	r.Failures = append(r.Failures, &CollaboratorError{Stage: stage, Unit: unit, Err: err})
	log.Warn("pipeline: collaborator failed",
		zap.String("stage", string(stage)),
		zap.String("unit", unit),
		zap.Error(err),
	)
}

// failedAudit is the audit recorded for a lead whose evaluation failed.
func failedAudit(err error) model.SiteAudit {
	return model.SiteAudit{
		TechStack: model.TechUnknown,
		Issues:    []string{},
		Notes:     "evaluation failed: " + err.Error(),
	}
}

func sortRows(rows []model.ScoredRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
}

// hotPrefix returns the leading rows at or above threshold. rows must be
// sorted best first.
func hotPrefix(rows []model.ScoredRow, threshold int) []model.ScoredRow {
	n := sort.Search(len(rows), func(i int) bool { return !rows[i].Hot(threshold) })
	if n == 0 {
		return nil
	}
	return rows[:n]
}
