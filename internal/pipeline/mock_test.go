package pipeline

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/seo-leads/internal/enrich"
	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/report"
)

// --- Ranker Mock ---

type mockRanker struct {
	mock.Mock
}

func (m *mockRanker) Rank(ctx context.Context, geo string, candidates []string, k int) ([]string, error) {
	args := m.Called(ctx, geo, candidates, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Finder Mock ---

type mockFinder struct {
	mock.Mock
}

func (m *mockFinder) Find(ctx context.Context, geo, industry string, max int) ([]model.Lead, error) {
	args := m.Called(ctx, geo, industry, max)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

// --- Auditor Mock ---

type mockAuditor struct {
	mock.Mock
}

func (m *mockAuditor) Evaluate(ctx context.Context, website string) (model.SiteAudit, error) {
	args := m.Called(ctx, website)
	return args.Get(0).(model.SiteAudit), args.Error(1)
}

// --- Analyzer Mock ---

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, t enrich.Target) (*model.Insight, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Insight), args.Error(1)
}

// --- Persister Mock (also a RunFinisher) ---

type mockPersister struct {
	mock.Mock
}

func (m *mockPersister) Append(ctx context.Context, run model.Run, rows []model.ScoredRow) error {
	args := m.Called(ctx, run, rows)
	return args.Error(0)
}

func (m *mockPersister) FinishRun(ctx context.Context, run model.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// --- Sink Mock ---

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Store(ctx context.Context, r report.Report) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}

// --- Notifier Mock ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyHotLeads(ctx context.Context, run model.Run, rows []model.ScoredRow) error {
	args := m.Called(ctx, run, rows)
	return args.Error(0)
}

// --- Recorder Mock ---

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) ObserveLead(d time.Duration) {
	m.Called(d)
}

func (m *mockRecorder) ObserveRun(status model.RunStatus, rows, hot int, d time.Duration) {
	m.Called(status, rows, hot, d)
}
