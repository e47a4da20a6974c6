package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/seo-leads/internal/model"
)

func TestMetrics_ObserveRun(t *testing.T) {
	m := NewMetrics()
	m.ObserveRun(model.RunStatusDone, 30, 4, 90*time.Second)
	m.ObserveRun(model.RunStatusNoData, 0, 0, time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(m.runs.WithLabelValues("done")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runs.WithLabelValues("no_data")), 0)
	assert.InDelta(t, 30, testutil.ToFloat64(m.rows), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.hotLeads), 0)
}

func TestMetrics_ObserveSource(t *testing.T) {
	m := NewMetrics()
	m.ObserveSource("pagespeed", true)
	m.ObserveSource("pagespeed", false)
	m.ObserveSource("pagespeed", false)

	assert.InDelta(t, 1, testutil.ToFloat64(m.sourceResults.WithLabelValues("pagespeed", "ok")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.sourceResults.WithLabelValues("pagespeed", "unavailable")), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveLead(250 * time.Millisecond)
	m.ObserveRun(model.RunStatusDone, 1, 1, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "seoleads_runs_total")
	assert.Contains(t, body, "seoleads_lead_duration_seconds_count 1")
}
