package dataforseo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/seo-leads/internal/resilience"
)

func TestLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/serp/google/locations", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ops@example.com", user)
		assert.Equal(t, "pw", pass)

		var payload []map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Houston", payload[0]["location_name"])

		_, _ = w.Write([]byte(`{"status_code":20000,"tasks":[{"status_code":20000,"result":[
			{"location_code":1026201,"location_name":"Houston,Texas,United States","location_type":"City"}]}]}`))
	}))
	defer srv.Close()

	c := NewClient("ops@example.com", "pw", WithBaseURL(srv.URL), WithRateLimit(0))
	locs, err := c.Locations(context.Background(), "Houston")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 1026201, locs[0].Code)
	assert.Equal(t, "City", locs[0].Type)
}

func TestOrganicLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/serp/google/organic/live/advanced", r.URL.Path)
		var tasks []Task
		require.NoError(t, json.NewDecoder(r.Body).Decode(&tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, "roofers near me", tasks[0].Keyword)
		assert.Equal(t, 1026201, tasks[0].LocationCode)

		_, _ = w.Write([]byte(`{"status_code":20000,"tasks":[{"status_code":20000,"result":[{
			"keyword":"roofers near me","se_results_count":2500000,
			"items":[{"type":"paid"},{"type":"local_pack"},{"type":"organic"},{"type":"organic"}]}]}]}`))
	}))
	defer srv.Close()

	c := NewClient("u", "p", WithBaseURL(srv.URL), WithRateLimit(0))
	res, err := c.OrganicLive(context.Background(), Task{Keyword: "roofers near me", LocationCode: 1026201})
	require.NoError(t, err)
	assert.Equal(t, int64(2500000), res.TotalResults)
	assert.Equal(t, 1, res.Count(ItemPaid))
	assert.Equal(t, 1, res.Count(ItemLocalPack))
	assert.Equal(t, 2, res.Count(ItemOrganic))
}

func TestOrganicLive_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"envelope status", http.StatusOK, `{"status_code":40100,"status_message":"Not authorized"}`, "Not authorized"},
		{"task status", http.StatusOK, `{"status_code":20000,"tasks":[{"status_code":40501,"status_message":"Invalid Field"}]}`, "Invalid Field"},
		{"no tasks", http.StatusOK, `{"status_code":20000,"tasks":[]}`, "no tasks"},
		{"no result", http.StatusOK, `{"status_code":20000,"tasks":[{"status_code":20000,"result":[]}]}`, "no serp results"},
		{"bad json", http.StatusOK, `{`, "dataforseo: unmarshal response"},
		{"http status", http.StatusPaymentRequired, `{}`, "402"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("u", "p", WithBaseURL(srv.URL), WithRateLimit(0))
			res, err := c.OrganicLive(context.Background(), Task{Keyword: "k", LocationCode: 1})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPost_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("u", "p", WithBaseURL(srv.URL), WithRateLimit(0))
	_, err := c.Locations(context.Background(), "Houston")
	var se *resilience.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestCount_Nil(t *testing.T) {
	var r *SerpResult
	assert.Zero(t, r.Count(ItemOrganic))
}
