package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Validation modes.
const (
	ModeRun    = "run"
	ModeServe  = "serve"
	ModeRank   = "rank"
	ModeSchema = "schema"
)

// Validate checks the settings the given command mode depends on and
// reports every problem at once.
func (c *Config) Validate(mode string) error {
	switch mode {
	case ModeRun, ModeServe, ModeRank, ModeSchema:
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres", "none":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite, postgres, or none, got %q", c.Store.Driver))
	}
	if c.Store.Driver != "none" && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	if mode == ModeSchema {
		return joinErrs(errs)
	}

	if c.Pipeline.LeadsPerIndustry <= 0 {
		errs = append(errs, "pipeline.leads_per_industry must be > 0")
	}
	if c.Pipeline.MaxIndustries <= 0 {
		errs = append(errs, "pipeline.max_industries must be > 0")
	}
	if c.Pipeline.MaxConcurrentLeads < 1 || c.Pipeline.MaxConcurrentLeads > 50 {
		errs = append(errs, "pipeline.max_concurrent_leads must be between 1 and 50")
	}
	if c.Pipeline.HotThreshold < 0 || c.Pipeline.HotThreshold > 100 {
		errs = append(errs, "pipeline.hot_threshold must be within 0-100")
	}
	if c.Pipeline.EnrichThreshold < 0 || c.Pipeline.EnrichThreshold > 100 {
		errs = append(errs, "pipeline.enrich_threshold must be within 0-100")
	}
	switch c.Pipeline.TrendSource {
	case "", "zero", "random":
	default:
		errs = append(errs, fmt.Sprintf("pipeline.trend_source must be zero or random, got %q", c.Pipeline.TrendSource))
	}
	for name, p := range c.Industry.Penalties {
		if p <= 0 || p > 1 {
			errs = append(errs, fmt.Sprintf("industry.penalties[%s] must be within (0, 1], got %v", name, p))
		}
	}

	switch c.Output.Format {
	case "csv", "xlsx":
	default:
		errs = append(errs, fmt.Sprintf("output.format must be csv or xlsx, got %q", c.Output.Format))
	}

	if mode == ModeRun {
		if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("schedule.timezone %q: %v", c.Schedule.Timezone, err))
		}
		if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
			errs = append(errs, "schedule.hour must be within 0-23")
		}
	}

	if mode == ModeServe && c.Server.Port <= 0 {
		errs = append(errs, "server.port must be > 0")
	}

	return joinErrs(errs)
}

func joinErrs(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return eris.Errorf("config: invalid: %s", strings.Join(errs, "; "))
}

// Dependency reports whether an optional collaborator is configured.
type Dependency struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// Dependencies lists every optional collaborator and whether it has credentials.
func (c *Config) Dependencies() []Dependency {
	return []Dependency{
		{Name: "google_places", Configured: c.Google.Key != ""},
		{Name: "pagespeed", Configured: c.PageSpeed.Key != ""},
		{Name: "hunter", Configured: c.Hunter.Key != ""},
		{Name: "serpapi", Configured: c.Serp.Key != ""},
		{Name: "dataforseo", Configured: c.DataForSEO.Login != "" && c.DataForSEO.Password != ""},
		{Name: "anthropic", Configured: c.Anthropic.Key != ""},
		{Name: "gemini", Configured: c.Gemini.Key != ""},
		{Name: "firecrawl", Configured: c.Firecrawl.Key != ""},
		{Name: "notion", Configured: c.Notion.Token != "" && c.Notion.ReportParent != ""},
		{Name: "supabase", Configured: c.Supabase.URL != "" && c.Supabase.Key != ""},
		{Name: "alert_webhook", Configured: c.Alert.WebhookURL != ""},
	}
}
