package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/seo-leads/internal/config"
	"github.com/sells-group/seo-leads/internal/discovery"
	"github.com/sells-group/seo-leads/internal/industry"
	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/monitoring"
	"github.com/sells-group/seo-leads/internal/pipeline"
	"github.com/sells-group/seo-leads/internal/report"
	"github.com/sells-group/seo-leads/internal/resilience"
	"github.com/sells-group/seo-leads/internal/store"
)

const (
	defaultAPIMaxResults = 10
	maxAPIMaxResults     = 50
	maxRequestBytes      = 1 << 20
)

// leadEvaluator audits and scores a single lead.
type leadEvaluator interface {
	EvaluateLead(ctx context.Context, geo, industry string, lead model.Lead) (model.ScoredRow, []*pipeline.CollaboratorError, error)
}

// industryScorer ranks industries with their breakdown.
type industryScorer interface {
	Scores(ctx context.Context, geo string, candidates []string, k int) ([]industry.Score, error)
}

// runReader is the read side of the aggregate store.
type runReader interface {
	ListRuns(ctx context.Context, f store.RunFilter) ([]model.Run, error)
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRows(ctx context.Context, f store.RowFilter) ([]model.ScoredRow, error)
}

// apiServer serves the HTTP API. Runs, Collector, Breakers, and Metrics are
// optional.
type apiServer struct {
	Evaluator   leadEvaluator
	Finder      discovery.Finder
	Ranker      industryScorer
	Catalog     []string
	Runs        runReader
	Collector   *monitoring.Collector
	Breakers    interface{ States() map[string]string }
	Metrics     *monitoring.Metrics
	Deps        []config.Dependency
	DefaultGeo  string
	DefaultK    int
	Concurrency int
	Lookback    int
}

// routes builds the router.
func (s *apiServer) routes(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/health/detailed", s.handleHealthDetailed)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/leads", s.handleLeads)
		r.Post("/lead-report", s.handleLeadReport)
		r.Get("/industries", s.handleIndustries)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/rows", s.handleListRows)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type detailedHealth struct {
	Status       string               `json:"status"`
	Dependencies []config.Dependency  `json:"dependencies"`
	Missing      []string             `json:"missing"`
	Breakers     map[string]string    `json:"breakers,omitempty"`
	Runs         *monitoring.Snapshot `json:"runs,omitempty"`
	RunsError    string               `json:"runs_error,omitempty"`
}

func (s *apiServer) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	h := detailedHealth{Status: "ok", Dependencies: s.Deps, Missing: []string{}}
	for _, d := range s.Deps {
		if !d.Configured {
			h.Missing = append(h.Missing, d.Name)
		}
	}
	if s.Breakers != nil {
		h.Breakers = s.Breakers.States()
		for _, state := range h.Breakers {
			if state != resilience.CircuitClosed.String() {
				h.Status = "degraded"
			}
		}
	}
	if s.Collector != nil {
		snap, err := s.Collector.Collect(r.Context(), s.Lookback)
		if err != nil {
			h.RunsError = err.Error()
			h.Status = "degraded"
		} else {
			h.Runs = snap
		}
	}
	writeJSON(w, http.StatusOK, h)
}

// leadResult is one evaluated lead in an API response.
type leadResult struct {
	Name      string          `json:"name"`
	Website   string          `json:"website,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Address   string          `json:"address,omitempty"`
	Email     string          `json:"email,omitempty"`
	Industry  string          `json:"industry"`
	Score     int             `json:"score"`
	Urgency   string          `json:"urgency"`
	TechStack model.TechStack `json:"tech_stack"`
	Issues    []string        `json:"issues"`
	Notes     string          `json:"notes,omitempty"`
}

func toLeadResult(row model.ScoredRow) leadResult {
	issues := row.Audit.Issues
	if issues == nil {
		issues = []string{}
	}
	return leadResult{
		Name:      row.Lead.Name,
		Website:   row.Lead.Website,
		Phone:     row.Lead.Phone,
		Address:   row.Lead.Address,
		Email:     row.Lead.Email,
		Industry:  row.Industry,
		Score:     row.Score,
		Urgency:   report.Urgency(row.Score),
		TechStack: row.Audit.TechStack,
		Issues:    issues,
		Notes:     row.Audit.Notes,
	}
}

type leadsRequest struct {
	Geo        string `json:"geo"`
	Industry   string `json:"industry"`
	MaxResults int    `json:"max_results"`
}

// handleLeads finds leads for one industry and audits and scores each.
// A lead whose evaluation fails scores 0.
func (s *apiServer) handleLeads(w http.ResponseWriter, r *http.Request) {
	var req leadsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Geo = strings.TrimSpace(req.Geo)
	req.Industry = strings.TrimSpace(req.Industry)
	if req.Geo == "" || req.Industry == "" {
		writeError(w, http.StatusBadRequest, "geo and industry are required")
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultAPIMaxResults
	}
	req.MaxResults = min(req.MaxResults, maxAPIMaxResults)

	ctx := r.Context()
	leads, err := s.Finder.Find(ctx, req.Geo, req.Industry, req.MaxResults)
	if err != nil {
		zap.L().Warn("api: find leads failed", zap.String("geo", req.Geo), zap.String("industry", req.Industry), zap.Error(err))
		writeError(w, http.StatusBadGateway, "lead discovery failed")
		return
	}

	results := make([]leadResult, len(leads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for i, lead := range leads {
		g.Go(func() error {
			row, fails, err := s.Evaluator.EvaluateLead(gctx, req.Geo, req.Industry, lead)
			if err != nil {
				return err
			}
			for _, f := range fails {
				zap.L().Warn("api: lead degraded", zap.String("unit", f.Unit), zap.Error(f.Err))
			}
			results[i] = toLeadResult(row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	writeJSON(w, http.StatusOK, map[string]any{
		"geo":      req.Geo,
		"industry": req.Industry,
		"count":    len(results),
		"leads":    results,
	})
}

type leadReportRequest struct {
	Website      string `json:"website"`
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
}

type leadReportResponse struct {
	BusinessName string          `json:"business_name"`
	Website      string          `json:"website"`
	Industry     string          `json:"industry"`
	Score        int             `json:"score"`
	Urgency      string          `json:"urgency"`
	Audit        model.SiteAudit `json:"audit"`
	Insight      *model.Insight  `json:"insight,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// handleLeadReport audits one website on demand.
func (s *apiServer) handleLeadReport(w http.ResponseWriter, r *http.Request) {
	var req leadReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Website) == "" {
		writeError(w, http.StatusBadRequest, "website is required")
		return
	}

	lead := model.NewLead(req.BusinessName, model.SourceAPI)
	lead.Website = strings.TrimSpace(req.Website)
	row, fails, err := s.Evaluator.EvaluateLead(r.Context(), s.DefaultGeo, req.Industry, lead)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	resp := leadReportResponse{
		BusinessName: row.Lead.Name,
		Website:      lead.Website,
		Industry:     req.Industry,
		Score:        row.Score,
		Urgency:      report.Urgency(row.Score),
		Audit:        row.Audit,
		Insight:      row.Insight,
	}
	for _, f := range fails {
		resp.Warnings = append(resp.Warnings, f.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleIndustries(w http.ResponseWriter, r *http.Request) {
	geo := r.URL.Query().Get("geo")
	if geo == "" {
		geo = s.DefaultGeo
	}
	k := s.DefaultK
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "k must be an integer")
			return
		}
		k = n
	}

	scores, err := s.Ranker.Scores(r.Context(), geo, s.Catalog, k)
	if err != nil {
		var ie *industry.InputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "ranking failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"geo": geo, "industries": scores})
}

// queryInt reads a non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *apiServer) requireRuns(w http.ResponseWriter) bool {
	if s.Runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is disabled")
		return false
	}
	return true
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}
	limit, ok := queryInt(r, "limit", 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	runs, err := s.Runs.ListRuns(r.Context(), store.RunFilter{
		Geo:    r.URL.Query().Get("geo"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		zap.L().Error("api: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}
	run, err := s.Runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *apiServer) handleListRows(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}
	minScore, ok := queryInt(r, "min_score", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "min_score must be a non-negative integer")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.Runs.GetRun(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	rows, err := s.Runs.ListRows(r.Context(), store.RowFilter{RunID: id, MinScore: minScore})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if rows == nil {
		rows = []model.ScoredRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": id, "rows": rows})
}

func (s *apiServer) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	zap.L().Error("api: store read", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "store read failed")
}
