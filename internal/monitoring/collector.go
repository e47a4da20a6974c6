package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/store"
)

// Snapshot is a point-in-time view of recent pipeline runs.
type Snapshot struct {
	RunsTotal   int     `json:"runs_total"`
	RunsDone    int     `json:"runs_done"`
	RunsNoData  int     `json:"runs_no_data"`
	RunsFailed  int     `json:"runs_failed"`
	RunsActive  int     `json:"runs_active"`
	RunsStale   int     `json:"runs_stale"`
	FailureRate float64 `json:"failure_rate"`
	RowsTotal   int     `json:"rows_total"`
	HotLeads    int     `json:"hot_leads"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Finished is the number of runs that reached a terminal status. Stale runs
// are counted as failed.
func (s *Snapshot) Finished() int {
	return s.RunsDone + s.RunsNoData + s.RunsFailed
}

// RunLister is the read side of an aggregate store.
type RunLister interface {
	ListRuns(ctx context.Context, f store.RunFilter) ([]model.Run, error)
}

// DefaultStaleAfter is how long a run may sit in a non-terminal status
// before the collector counts it as failed. A process that dies after
// persisting never records the final status.
const DefaultStaleAfter = 6 * time.Hour

// Collector summarizes recent runs from the aggregate store.
type Collector struct {
	runs       RunLister
	staleAfter time.Duration
	now        func() time.Time
}

// NewCollector creates a run collector.
func NewCollector(runs RunLister) *Collector {
	return &Collector{runs: runs, staleAfter: DefaultStaleAfter, now: time.Now}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*Snapshot, error) {
	now := c.now().UTC()
	snap := &Snapshot{LookbackHours: lookbackHours, CollectedAt: now}

	runs, err := c.runs.ListRuns(ctx, store.RunFilter{
		CreatedAfter: now.Add(-time.Duration(lookbackHours) * time.Hour),
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.RunsTotal = len(runs)
	for _, r := range runs {
		switch r.Status {
		case model.RunStatusDone:
			snap.RunsDone++
		case model.RunStatusNoData:
			snap.RunsNoData++
		case model.RunStatusFailed:
			snap.RunsFailed++
		default:
			if now.Sub(r.CreatedAt) > c.staleAfter {
				snap.RunsStale++
				snap.RunsFailed++
			} else {
				snap.RunsActive++
			}
		}
		snap.RowsTotal += r.RowCount
		snap.HotLeads += r.HotCount
	}
	if f := snap.Finished(); f > 0 {
		snap.FailureRate = float64(snap.RunsFailed) / float64(f)
	}
	return snap, nil
}
