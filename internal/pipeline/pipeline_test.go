package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/seo-leads/internal/enrich"
	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/report"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestPipeline(deps Deps, opts Options) *Pipeline {
	p := New(deps, opts)
	p.now = func() time.Time { return testNow }
	p.newID = func() string { return "run-1" }
	return p
}

func auditFor(lcp float64, schema bool, months, trend int) model.SiteAudit {
	a := model.SiteAudit{
		LCP:                lcp,
		HasSchema:          schema,
		ContentFreshMonths: months,
		TrafficTrend90d:    trend,
		TechStack:          model.TechCustom,
	}
	a.Issues = model.DeriveIssues(a)
	return a
}

func lead(name, website string) model.Lead {
	l := model.NewLead(name, model.SourceGooglePlaces)
	l.Website = website
	l.City = "Houston"
	return l
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	ctx := context.Background()

	finder := &mockFinder{}
	finder.On("Find", mock.Anything, "Houston, TX", "plumbers", 30).Return([]model.Lead{
		lead("Alpha Plumbing", ""),
		lead("Bravo Plumbing", "https://bravo.example.org"),
	}, nil).Once()

	auditor := &mockAuditor{}
	auditor.On("Evaluate", mock.Anything, "").Return(model.EmptyAudit(), nil).Once()
	auditor.On("Evaluate", mock.Anything, "https://bravo.example.org").
		Return(auditFor(4.2, false, 14, -25), nil).Once()

	insight := &model.Insight{PitchAngle: "Fix the slow homepage", RevenueImpact: "High"}
	analyzer := &mockAnalyzer{}
	analyzer.On("Analyze", mock.Anything, enrich.Target{
		URL: "https://bravo.example.org", BusinessName: "Bravo Plumbing", Industry: "plumbers",
	}).Return(insight, nil).Once()

	persister := &mockPersister{}
	persister.On("Append", mock.Anything, mock.MatchedBy(func(r model.Run) bool {
		return r.ID == "run-1" && r.RowCount == 2 && r.HotCount == 1 && r.Status == model.RunStatusPersisting
	}), mock.AnythingOfType("[]model.ScoredRow")).Return(nil).Once()
	persister.On("FinishRun", mock.Anything, mock.MatchedBy(func(r model.Run) bool {
		return r.Status == model.RunStatusDone && r.ReportRef == "out/report.txt"
	})).Return(nil).Once()

	var stored report.Report
	sink := &mockSink{}
	sink.On("Store", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(report.Report) }).
		Return("out/report.txt", nil).Once()

	var alerted []model.ScoredRow
	notifier := &mockNotifier{}
	notifier.On("NotifyHotLeads", mock.Anything, mock.MatchedBy(func(r model.Run) bool {
		return r.ReportRef == "out/report.txt"
	}), mock.Anything).
		Run(func(args mock.Arguments) { alerted = args.Get(2).([]model.ScoredRow) }).
		Return(nil).Once()

	p := newTestPipeline(Deps{
		Finder: finder, Auditor: auditor, Analyzer: analyzer,
		Persister: persister, Sink: sink, Notifier: notifier,
	}, Options{})

	req := NewRequest("Houston, TX")
	req.Industries = []string{"plumbers"}
	res, err := p.Run(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDone, res.Outcome)
	assert.NoError(t, res.Err())
	assert.Equal(t, model.RunStatusDone, res.Status)
	assert.Equal(t, []model.RunStatus{
		model.RunStatusDiscovering,
		model.RunStatusEnumerating,
		model.RunStatusEvaluating,
		model.RunStatusPersisting,
		model.RunStatusAlerting,
		model.RunStatusDone,
	}, res.States)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Bravo Plumbing", res.Rows[0].Lead.Name)
	assert.Equal(t, 85, res.Rows[0].Score)
	assert.Equal(t, 85, *res.Rows[0].Lead.Score)
	assert.Same(t, insight, res.Rows[0].Insight)
	assert.Equal(t, "Alpha Plumbing", res.Rows[1].Lead.Name)
	assert.Equal(t, 0, res.Rows[1].Score)
	assert.Nil(t, res.Rows[1].Insight)
	assert.Equal(t, "2026-03-01", res.Rows[1].RunDate)
	assert.Equal(t, "run-1", res.Rows[1].RunID)

	require.Len(t, res.Hot, 1)
	assert.Equal(t, "Bravo Plumbing", res.Hot[0].Lead.Name)
	assert.Equal(t, "out/report.txt", res.ReportRef)
	assert.Contains(t, stored.Body, "BRAVO PLUMBING")
	assert.NotContains(t, stored.Body, "ALPHA PLUMBING")
	assert.Equal(t, "SEO Lead Intelligence Report - Houston, TX - 2026-03-01", stored.Title)
	require.Len(t, alerted, 1)
	assert.Empty(t, res.Failures)

	for _, m := range []interface{ AssertExpectations(mock.TestingT) bool }{
		finder, auditor, analyzer, persister, sink, notifier,
	} {
		m.AssertExpectations(t)
	}
}

func TestPipeline_Run_LeadFailureIsolated(t *testing.T) {
	leads := make([]model.Lead, 10)
	for i := range leads {
		leads[i] = lead(fmt.Sprintf("Lead %d", i+1), fmt.Sprintf("https://lead%d.example.org", i+1))
	}
	finder := &mockFinder{}
	finder.On("Find", mock.Anything, "Austin, TX", "roofing", 30).Return(leads, nil)

	auditor := &mockAuditor{}
	auditor.On("Evaluate", mock.Anything, "https://lead3.example.org").
		Return(model.SiteAudit{}, errors.New("inspector exploded"))
	auditor.On("Evaluate", mock.Anything, mock.Anything).Return(auditFor(2.0, false, 1, 0), nil)

	p := newTestPipeline(Deps{Finder: finder, Auditor: auditor}, Options{Concurrency: 3})
	req := NewRequest("Austin, TX")
	req.Industries = []string{"roofing"}

	res, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Rows, 10)

	var failed *model.ScoredRow
	for i := range res.Rows {
		if res.Rows[i].Lead.Name == "Lead 3" {
			failed = &res.Rows[i]
		} else {
			assert.Equal(t, 25, res.Rows[i].Score)
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, 0, failed.Score)
	assert.Nil(t, failed.Insight)
	assert.Contains(t, failed.Audit.Notes, "inspector exploded")

	require.Len(t, res.Failures, 1)
	assert.Equal(t, StageEvaluation, res.Failures[0].Stage)
	assert.Equal(t, "roofing/Lead 3", res.Failures[0].Unit)
	assert.ErrorContains(t, res.Failures[0], "inspector exploded")
}

func TestPipeline_Run_DeterministicOrder(t *testing.T) {
	leads := make([]model.Lead, 20)
	for i := range leads {
		leads[i] = lead(fmt.Sprintf("Lead %02d", i), fmt.Sprintf("https://l%d.example.org", i))
	}
	finder := &mockFinder{}
	finder.On("Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(leads, nil)
	auditor := &mockAuditor{}
	auditor.On("Evaluate", mock.Anything, mock.Anything).Return(auditFor(2.0, true, 1, 0), nil)

	p := newTestPipeline(Deps{Finder: finder, Auditor: auditor}, Options{Concurrency: 8})
	req := NewRequest("Dallas, TX")
	req.Industries = []string{"hvac"}

	for range 3 {
		res, err := p.Run(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, res.Rows, 20)
		for i, r := range res.Rows {
			assert.Equal(t, fmt.Sprintf("Lead %02d", i), r.Lead.Name)
		}
		assert.Empty(t, res.Hot)
	}
}

func TestPipeline_Run_NoData(t *testing.T) {
	finder := &mockFinder{}
	finder.On("Find", mock.Anything, "Nowhere, ZZ", mock.Anything, 30).Return([]model.Lead{}, nil).Twice()
	persister := &mockPersister{}
	sink := &mockSink{}
	notifier := &mockNotifier{}
	auditor := &mockAuditor{}

	recorder := &mockRecorder{}
	recorder.On("ObserveRun", model.RunStatusNoData, 0, 0, mock.Anything).Once()

	p := newTestPipeline(Deps{
		Finder: finder, Auditor: auditor, Persister: persister,
		Sink: sink, Notifier: notifier, Recorder: recorder,
	}, Options{})
	req := NewRequest("Nowhere, ZZ")
	req.Industries = []string{"plumbers", "roofing"}

	res, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoData, res.Outcome)
	assert.ErrorIs(t, res.Err(), ErrNoData)
	assert.Equal(t, model.RunStatusNoData, res.Status)
	assert.Empty(t, res.Rows)

	persister.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	persister.AssertNotCalled(t, "FinishRun", mock.Anything, mock.Anything)
	sink.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyHotLeads", mock.Anything, mock.Anything, mock.Anything)
	auditor.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
	finder.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestPipeline_Run_NoIndustries(t *testing.T) {
	ranker := &mockRanker{}
	ranker.On("Rank", mock.Anything, "Houston, TX", []string(nil), DefaultMaxIndustries).Return([]string{}, nil)
	finder := &mockFinder{}

	p := newTestPipeline(Deps{Ranker: ranker, Finder: finder, Auditor: &mockAuditor{}}, Options{})
	res, err := p.Run(context.Background(), NewRequest("Houston, TX"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoData, res.Outcome)
	finder.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_Run_InputErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"blank geo", Request{Geo: "  ", MaxLeads: 30, HotThreshold: 70}, "geo"},
		{"zero max leads", Request{Geo: "Houston, TX", MaxLeads: 0, HotThreshold: 70}, "max_leads"},
		{"negative max leads", Request{Geo: "Houston, TX", MaxLeads: -1, HotThreshold: 70}, "max_leads"},
		{"threshold above 100", Request{Geo: "Houston, TX", MaxLeads: 30, HotThreshold: 101}, "hot_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &mockFinder{}
			ranker := &mockRanker{}
			p := newTestPipeline(Deps{Ranker: ranker, Finder: finder, Auditor: &mockAuditor{}}, Options{})

			res, err := p.Run(context.Background(), tt.req)
			assert.Nil(t, res)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.field, inputErr.Field)
			ranker.AssertNotCalled(t, "Rank", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			finder.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPipeline_Run_MissingCollaborators(t *testing.T) {
	_, err := New(Deps{}, Options{}).Run(context.Background(), NewRequest("Houston, TX"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finder and auditor are required")
}

func TestPipeline_Run_RankedIndustriesPlusExtras(t *testing.T) {
	catalog := []string{"roofing", "hvac", "plumbers"}
	ranker := &mockRanker{}
	ranker.On("Rank", mock.Anything, "Houston, TX", catalog, 2).Return([]string{"hvac", "roofing"}, nil).Once()

	finder := &mockFinder{}
	finder.On("Find", mock.Anything, "Houston, TX", mock.Anything, 5).Return([]model.Lead{}, nil)

	p := newTestPipeline(Deps{Ranker: ranker, Catalog: catalog, Finder: finder, Auditor: &mockAuditor{}},
		Options{MaxIndustries: 2})
	req := NewRequest("Houston, TX")
	req.MaxLeads = 5
	req.AddIndustries = []string{"HVAC", " medspas ", ""}

	res, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"hvac", "roofing", "medspas"}, res.Industries)
	ranker.AssertExpectations(t)
	finder.AssertNumberOfCalls(t, "Find", 3)
}

func TestPipeline_Run_NoRankerUsesCatalogHead(t *testing.T) {
	finder := &mockFinder{}
	finder.On("Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]model.Lead{}, nil)

	p := newTestPipeline(Deps{Catalog: []string{"a", "b", "c"}, Finder: finder, Auditor: &mockAuditor{}},
		Options{MaxIndustries: 2})
	res, err := p.Run(context.Background(), NewRequest("Houston, TX"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Industries)
}

func TestPipeline_Run_RankerError(t *testing.T) {
	ranker := &mockRanker{}
	ranker.On("Rank", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, context.Canceled)

	p := newTestPipeline(Deps{Ranker: ranker, Finder: &mockFinder{}, Auditor: &mockAuditor{}}, Options{})
	res, err := p.Run(context.Background(), NewRequest("Houston, TX"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: rank industries")
	assert.Equal(t, model.RunStatusFailed, res.Status)
}

func TestPipeline_Run_DiscoveryFailureSkipsIndustry(t *testing.T) {
	finder := &mockFinder{}
	finder.On("Find", mock.Anything, mock.Anything, "roofing", mock.Anything).
		Return(nil, errors.New("places: 503"))
	finder.On("Find", mock.Anything, mock.Anything, "hvac", mock.Anything).
		Return([]model.Lead{lead("Cool Air", "https://coolair.example.org")}, nil)

	auditor := &mockAuditor{}
	auditor.On("Evaluate", mock.Anything, mock.Anything).Return(auditFor(2.0, true, 1, 0), nil)

	p := newTestPipeline(Deps{Finder: finder, Auditor: auditor}, Options{})
	req := NewRequest("Houston, TX")
	req.Industries = []string{"roofing", "hvac"}

	res, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "hvac", res.Rows[0].Industry)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, StageDiscovery, res.Failures[0].Stage)
	assert.Equal(t, "roofing", res.Failures[0].Unit)
	var collab *CollaboratorError
	assert.ErrorAs(t, res.Failures[0], &collab)
}

func TestPipeline_Run_FinderOverReturnTruncated(t *testing.T) {
	leads := []model.Lead{lead("A", ""), lead("B", ""), lead("C", "")}
	finder := &mockFinder{}
	finder.On("Find", mock.Anything, mock.Anything, mock.Anything, 2).Return(leads, nil)
	auditor := &mockAuditor{}
	auditor.On("Evaluate", mock.Anything, "").Return(model.EmptyAudit(), nil)

	p := newTestPipeline(Deps{Finder: finder, Auditor: auditor}, Options{})
	req := NewRequest("Houston, TX")
	req.Industries = []string{"roofing"}
	req.MaxLeads = 2

	res, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestPipeline_Run_EnrichmentGate(t *testing.T) {
	finder := &mockFinder{}
	finder.On("Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]model.Lead{
		lead("Warm", "https://warm.example.org"),
		lead("Hot", "https://hot.example.org"),
		lead("Failing", "https://failing.example.org"),
	}, nil)

	auditor := &mockAuditor{}
	auditor.On("Evaluate", mock.Anything, "https://warm.example.org").Return(auditFor(2.0, false, 1, -20), nil)
	auditor.On("Evaluate", mock.Anything, "https://hot.example.org").Return(auditFor(2.0, false, 12, -30), nil)
	auditor.On("Evaluate", mock.Anything, "https://failing.example.org").Return(auditFor(3.5, false, 12, -30), nil)

	analyzer := &mockAnalyzer{}
	analyzer.On("Analyze", mock.Anything, mock.MatchedBy(func(t enrich.Target) bool { return t.BusinessName == "Hot" })).
		Return(&model.Insight{}, nil)
	analyzer.On("Analyze", mock.Anything, mock.MatchedBy(func(t enrich.Target) bool { return t.BusinessName == "Failing" })).
		Return(nil, errors.New("all providers failed"))

	p := newTestPipeline(Deps{Finder: finder, Auditor: auditor, Analyzer: analyzer}, Options{})
	req := NewRequest("Houston, TX")
	req.Industries = []string{"roofing"}

	res, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	assert.Equal(t, "Failing", res.Rows[0].Lead.Name)
	assert.Equal(t, 85, res.Rows[0].Score)
	assert.Nil(t, res.Rows[0].Insight)
	assert.Equal(t, "Hot", res.Rows[1].Lead.Name)
	assert.Equal(t, 70, res.Rows[1].Score)
	assert.Nil(t, res.Rows[1].Insight, "empty insight is dropped")
	assert.Equal(t, "Warm", res.Rows[2].Lead.Name)
	assert.Equal(t, 55, res.Rows[2].Score)

	analyzer.AssertNumberOfCalls(t, "Analyze", 2)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, StageEnrichment, res.Failures[0].Stage)
}

func hotFinder(n int) (*mockFinder, *mockAuditor) {
	leads := make([]model.Lead, n)
	for i := range leads {
		leads[i] = lead(fmt.Sprintf("Hot %02d", i), fmt.Sprintf("https://hot%d.example.org", i))
	}
	finder := &mockFinder{}
	finder.On("Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(leads, nil)
	auditor := &mockAuditor{}
	auditor.On("Evaluate", mock.Anything, mock.Anything).Return(auditFor(4.0, false, 12, -30), nil)
	return finder, auditor
}

func TestPipeline_Run_SideChannelFailuresAreBestEffort(t *testing.T) {
	finder, auditor := hotFinder(2)

	persister := &mockPersister{}
	persister.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
	persister.On("FinishRun", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	sink := &mockSink{}
	sink.On("Store", mock.Anything, mock.Anything).Return("", errors.New("notion down"))
	notifier := &mockNotifier{}
	notifier.On("NotifyHotLeads", mock.Anything, mock.MatchedBy(func(r model.Run) bool { return r.ReportRef == "" }), mock.Anything).
		Return(errors.New("webhook 500"))

	p := newTestPipeline(Deps{
		Finder: finder, Auditor: auditor, Persister: persister, Sink: sink, Notifier: notifier,
	}, Options{})
	req := NewRequest("Houston, TX")
	req.Industries = []string{"roofing"}

	res, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, res.Outcome)
	assert.Len(t, res.Rows, 2)
	assert.Empty(t, res.ReportRef)

	stages := map[Stage]int{}
	for _, f := range res.Failures {
		stages[f.Stage]++
	}
	assert.Equal(t, map[Stage]int{StagePersistence: 2, StageReport: 1, StageAlert: 1}, stages)
	notifier.AssertExpectations(t)
}

func TestPipeline_Run_AlertLimit(t *testing.T) {
	finder, auditor := hotFinder(12)
	notifier := &mockNotifier{}
	notifier.On("NotifyHotLeads", mock.Anything, mock.Anything, mock.MatchedBy(func(rows []model.ScoredRow) bool {
		return len(rows) == 10
	})).Return(nil).Once()

	p := newTestPipeline(Deps{Finder: finder, Auditor: auditor, Notifier: notifier}, Options{})
	req := NewRequest("Houston, TX")
	req.Industries = []string{"roofing"}

	res, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, res.Hot, 12)
	notifier.AssertExpectations(t)
}

func TestPipeline_Run_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	finder := &mockFinder{}
	persister := &mockPersister{}
	p := newTestPipeline(Deps{Finder: finder, Auditor: &mockAuditor{}, Persister: persister}, Options{})
	req := NewRequest("Houston, TX")
	req.Industries = []string{"roofing"}

	res, err := p.Run(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.RunStatusFailed, res.Status)
	finder.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	persister.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_Run_CancelledDuringEvaluation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finder, _ := hotFinder(5)
	auditor := &mockAuditor{}
	auditor.On("Evaluate", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(model.SiteAudit{}, context.Canceled)
	persister := &mockPersister{}

	p := newTestPipeline(Deps{Finder: finder, Auditor: auditor, Persister: persister}, Options{Concurrency: 1})
	req := NewRequest("Houston, TX")
	req.Industries = []string{"roofing"}

	res, err := p.Run(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.RunStatusFailed, res.Status)
	assert.Empty(t, res.Rows)
	persister.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_Run_RecordsMetrics(t *testing.T) {
	finder, auditor := hotFinder(3)
	recorder := &mockRecorder{}
	recorder.On("ObserveLead", mock.Anything).Times(3)
	recorder.On("ObserveRun", model.RunStatusDone, 3, 3, mock.Anything).Once()

	p := newTestPipeline(Deps{Finder: finder, Auditor: auditor, Recorder: recorder}, Options{})
	req := NewRequest("Houston, TX")
	req.Industries = []string{"roofing"}

	_, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	recorder.AssertExpectations(t)
}

func TestPipeline_EvaluateLead(t *testing.T) {
	auditor := &mockAuditor{}
	auditor.On("Evaluate", mock.Anything, "https://x.example.org").Return(auditFor(4.2, false, 14, -25), nil)

	p := newTestPipeline(Deps{Auditor: auditor}, Options{})
	row, fails, err := p.EvaluateLead(context.Background(), "Houston, TX", "roofing", lead("X", "https://x.example.org"))
	require.NoError(t, err)
	assert.Empty(t, fails)
	assert.Equal(t, 85, row.Score)
	assert.Equal(t, "2026-03-01", row.RunDate)
	assert.Equal(t, "roofing", row.Industry)

	_, _, err = New(Deps{}, Options{}).EvaluateLead(context.Background(), "g", "i", model.Lead{})
	assert.Error(t, err)
}

func TestHotPrefix_Boundary(t *testing.T) {
	rows := []model.ScoredRow{{Score: 90}, {Score: 70}, {Score: 69}, {Score: 0}}
	hot := hotPrefix(rows, 70)
	require.Len(t, hot, 2)
	assert.Equal(t, 70, hot[1].Score)

	assert.Nil(t, hotPrefix(rows, 95))
	assert.Len(t, hotPrefix(rows, 0), 4)
}

func TestSortRows_Stable(t *testing.T) {
	rows := []model.ScoredRow{
		{Score: 50, Lead: model.Lead{Name: "a"}},
		{Score: 80, Lead: model.Lead{Name: "b"}},
		{Score: 50, Lead: model.Lead{Name: "c"}},
		{Score: 80, Lead: model.Lead{Name: "d"}},
	}
	sortRows(rows)
	var names []string
	for _, r := range rows {
		names = append(names, r.Lead.Name)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, names)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"Roofing", "hvac"}, dedupe([]string{"Roofing", " roofing ", ""}, []string{"hvac", "HVAC"}))
	assert.Nil(t, dedupe(nil))
}

func TestCollaboratorError(t *testing.T) {
	inner := errors.New("timeout")
	err := &CollaboratorError{Stage: StageDiscovery, Unit: "roofing", Err: inner}
	assert.Equal(t, "pipeline: discovery roofing: timeout", err.Error())
	assert.ErrorIs(t, err, inner)
}
