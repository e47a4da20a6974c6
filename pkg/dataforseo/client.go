// Package dataforseo wraps the DataForSEO v3 SERP API.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/seo-leads/internal/resilience"
)

const defaultBaseURL = "https://api.dataforseo.com/v3"

// statusOK is the DataForSEO success code for both envelopes and tasks.
const statusOK = 20000

// SERP item types.
const (
	ItemOrganic   = "organic"
	ItemPaid      = "paid"
	ItemLocalPack = "local_pack"
)

// Client queries Google SERP data through DataForSEO.
type Client interface {
	Locations(ctx context.Context, name string) ([]Location, error)
	OrganicLive(ctx context.Context, task Task) (*SerpResult, error)
}

// Location is one entry of the Google locations list.
type Location struct {
	Code int    `json:"location_code"`
	Name string `json:"location_name"`
	Type string `json:"location_type"`
}

// Task is one organic live/advanced request.
type Task struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code,omitempty"`
	Device       string `json:"device,omitempty"`
	OS           string `json:"os,omitempty"`
}

// SerpResult is the first result of an organic live/advanced task.
type SerpResult struct {
	Keyword      string `json:"keyword"`
	TotalResults int64  `json:"se_results_count"`
	Items        []Item `json:"items"`
}

// Item is one SERP element.
type Item struct {
	Type      string `json:"type"`
	RankGroup int    `json:"rank_group"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// Count returns the number of items of the given type.
func (r *SerpResult) Count(itemType string) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, it := range r.Items {
		if it.Type == itemType {
			n++
		}
	}
	return n
}

type envelope[T any] struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []T    `json:"result"`
	} `json:"tasks"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default 2 req/s limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	login    string
	password string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a DataForSEO client using HTTP basic auth.
func NewClient(login, password string, opts ...Option) Client {
	c := &httpClient{
		login:    login,
		password: password,
		baseURL:  defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(2, 2),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Locations(ctx context.Context, name string) ([]Location, error) {
	payload := []map[string]string{{"location_name": name}}
	var env envelope[Location]
	if err := c.post(ctx, "/serp/google/locations", payload, &env); err != nil {
		return nil, err
	}
	if err := taskError(env.StatusCode, env.StatusMessage, len(env.Tasks)); err != nil {
		return nil, eris.Wrapf(err, "dataforseo: locations %q", name)
	}
	t := env.Tasks[0]
	if t.StatusCode != statusOK {
		return nil, eris.Errorf("dataforseo: locations %q: task status %d: %s", name, t.StatusCode, t.StatusMessage)
	}
	return t.Result, nil
}

func (c *httpClient) OrganicLive(ctx context.Context, task Task) (*SerpResult, error) {
	var env envelope[SerpResult]
	if err := c.post(ctx, "/serp/google/organic/live/advanced", []Task{task}, &env); err != nil {
		return nil, err
	}
	if err := taskError(env.StatusCode, env.StatusMessage, len(env.Tasks)); err != nil {
		return nil, eris.Wrapf(err, "dataforseo: organic %q", task.Keyword)
	}
	t := env.Tasks[0]
	if t.StatusCode != statusOK {
		return nil, eris.Errorf("dataforseo: organic %q: task status %d: %s", task.Keyword, t.StatusCode, t.StatusMessage)
	}
	if len(t.Result) == 0 {
		return nil, eris.Errorf("dataforseo: organic %q: no serp results", task.Keyword)
	}
	return &t.Result[0], nil
}

func taskError(code int, msg string, tasks int) error {
	if code != statusOK {
		return eris.Errorf("status %d: %s", code, msg)
	}
	if tasks == 0 {
		return eris.New("no tasks in response")
	}
	return nil
}

func (c *httpClient) post(ctx context.Context, path string, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "dataforseo: rate limit")
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "dataforseo: marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "dataforseo: create request")
	}
	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("dataforseo: post %s", path))
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "dataforseo: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return resilience.NewStatusError("dataforseo", resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "dataforseo: unmarshal response")
	}
	return nil
}
