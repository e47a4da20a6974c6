package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/audit"
	"github.com/sells-group/seo-leads/internal/discovery"
	"github.com/sells-group/seo-leads/internal/enrich"
	"github.com/sells-group/seo-leads/internal/industry"
	"github.com/sells-group/seo-leads/internal/monitoring"
	"github.com/sells-group/seo-leads/internal/pipeline"
	"github.com/sells-group/seo-leads/internal/report"
	"github.com/sells-group/seo-leads/internal/resilience"
	"github.com/sells-group/seo-leads/internal/scrape"
	"github.com/sells-group/seo-leads/internal/store"
	anthropicpkg "github.com/sells-group/seo-leads/pkg/anthropic"
	"github.com/sells-group/seo-leads/pkg/dataforseo"
	"github.com/sells-group/seo-leads/pkg/firecrawl"
	"github.com/sells-group/seo-leads/pkg/gemini"
	"github.com/sells-group/seo-leads/pkg/google"
	"github.com/sells-group/seo-leads/pkg/hunter"
	"github.com/sells-group/seo-leads/pkg/notion"
	"github.com/sells-group/seo-leads/pkg/pagespeed"
	"github.com/sells-group/seo-leads/pkg/serp"
)

// breakerConfig is shared by every guarded collaborator. Per-call timeouts
// are set by the callers.
var breakerConfig = resilience.BreakerConfig{
	FailureThreshold: 5,
	CoolDown:         30 * time.Second,
}

// appEnv holds every initialized collaborator and the pipeline needed by the
// run, schedule, and serve commands.
type appEnv struct {
	Store    store.Store // nil when store.driver is none
	Pipeline *pipeline.Pipeline
	Ranker   *industry.Ranker
	Catalog  []string
	Finder   discovery.Finder
	Metrics  *monitoring.Metrics
	Alerter  *monitoring.Alerter
	Breakers *resilience.Breakers
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates configuration for mode, opens and migrates the store,
// builds every client, and assembles the pipeline. Callers should defer
// env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if st != nil {
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
	}

	env := &appEnv{
		Store:    st,
		Metrics:  monitoring.NewMetrics(),
		Alerter:  monitoring.NewAlerter(cfg.Alert),
		Breakers: resilience.NewBreakers(breakerConfig),
	}

	persister, err := initPersister(st)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.Ranker, env.Catalog, err = initRanker()
	if err != nil {
		env.Close()
		return nil, err
	}

	auditor, err := initAuditor(env.Breakers, env.Metrics)
	if err != nil {
		env.Close()
		return nil, err
	}

	analyzer, err := initAnalyzer(ctx, env.Breakers)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.Finder = initFinder()

	env.Pipeline = pipeline.New(pipeline.Deps{
		Ranker:    env.Ranker,
		Catalog:   env.Catalog,
		Finder:    env.Finder,
		Auditor:   auditor,
		Analyzer:  analyzer,
		Persister: persister,
		Sink:      initSink(),
		Notifier:  env.Alerter,
		Recorder:  env.Metrics,
	}, pipeline.Options{
		MaxIndustries:   cfg.Pipeline.MaxIndustries,
		Concurrency:     cfg.Pipeline.MaxConcurrentLeads,
		EnrichThreshold: cfg.Pipeline.EnrichThreshold,
		AlertLimit:      cfg.Alert.MaxLeads,
	})

	zap.L().Info("environment ready",
		zap.String("store", cfg.Store.Driver),
		zap.Int("catalog", len(env.Catalog)),
		zap.Bool("enrichment", analyzer != nil),
	)
	return env, nil
}

// initStore opens the aggregate store named by store.driver. It returns a
// nil store for driver none.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{MaxConns: cfg.Store.MaxConns})
	case "none":
		return nil, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPersister fans each run out to the archive file, the aggregate store,
// and Supabase when configured.
func initPersister(st store.Store) (store.Persister, error) {
	multi := store.Multi{store.NewArchiveWriter(cfg.Output.Dir, cfg.Output.Format)}
	if st != nil {
		multi = append(multi, st)
	}
	if cfg.Supabase.URL != "" && cfg.Supabase.Key != "" {
		sb, err := store.NewSupabase(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Table)
		if err != nil {
			return nil, err
		}
		multi = append(multi, sb)
	}
	return multi, nil
}

// initRanker loads the industry catalog and picks the demand source.
func initRanker() (*industry.Ranker, []string, error) {
	catalog := industry.DefaultCatalog()
	if cfg.Industry.CatalogPath != "" {
		var err error
		catalog, err = industry.LoadCatalog(cfg.Industry.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
	}

	ranker := industry.NewRanker(initDemand(), industry.WithPenalties(cfg.Industry.Penalties))
	return ranker, catalog, nil
}

// initDemand chains DataForSEO then SerpAPI, whichever are configured. The
// ranker falls back to the stub estimate per industry when the chain fails.
func initDemand() industry.DemandSource {
	var chain industry.ChainDemand
	if cfg.DataForSEO.Login != "" && cfg.DataForSEO.Password != "" {
		chain = append(chain, industry.NewDataForSEODemand(dataforseo.NewClient(cfg.DataForSEO.Login, cfg.DataForSEO.Password)))
	}
	if cfg.Serp.Key != "" {
		chain = append(chain, industry.NewSerpDemand(serp.NewClient(cfg.Serp.Key)))
	}
	switch len(chain) {
	case 0:
		zap.L().Warn("no demand source configured, industry demand uses the stub estimate")
		return industry.StubDemand{}
	case 1:
		return chain[0]
	}
	return chain
}

// initFinder uses Google Places when a key is configured and the directory
// stub otherwise. Hunter email lookup wraps either.
func initFinder() discovery.Finder {
	var finder discovery.Finder
	if cfg.Google.Key != "" {
		finder = discovery.NewPlacesFinder(google.NewClient(cfg.Google.Key, google.WithRateLimit(cfg.Google.RateLimit)))
	} else {
		zap.L().Warn("google places key not configured, using directory stub")
		finder = discovery.StubFinder{}
	}
	if cfg.Hunter.Key != "" {
		finder = discovery.NewEmailEnricher(finder, hunter.NewClient(cfg.Hunter.Key))
	}
	return finder
}

// initScraper returns the page fetcher chain: direct HTTP first, Firecrawl
// when configured.
func initScraper() scrape.Scraper {
	scrapers := []scrape.Scraper{scrape.NewLocalScraper(30 * time.Second)}
	if cfg.Firecrawl.Key != "" {
		fc := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		scrapers = append(scrapers, scrape.NewFirecrawlAdapter(fc))
	}
	return scrape.NewChain(nil, scrapers...)
}

// initAuditor builds the signal normalizer. PageSpeed is skipped without a key.
func initAuditor(breakers *resilience.Breakers, metrics *monitoring.Metrics) (*audit.Normalizer, error) {
	trend, err := audit.NewTrendSource(cfg.Pipeline.TrendSource, uint64(time.Now().UnixNano()))
	if err != nil {
		return nil, err
	}

	var perf audit.PerformanceSource
	if cfg.PageSpeed.Key != "" {
		ps := pagespeed.NewClient(cfg.PageSpeed.Key, pagespeed.WithStrategy(cfg.PageSpeed.Strategy))
		perf = audit.NewPageSpeedSource(ps, breakers.Get("pagespeed"), time.Duration(cfg.PageSpeed.TimeoutSecs)*time.Second)
	} else {
		zap.L().Warn("pagespeed key not configured, LCP falls back to the default")
	}

	return audit.NewNormalizer(perf, audit.NewHTMLInspector(initScraper()), trend,
		audit.WithObserver(metrics.ObserveSource),
	), nil
}

// initAnalyzer chains Claude then Gemini. It returns nil when neither is
// configured, which turns enrichment off.
func initAnalyzer(ctx context.Context, breakers *resilience.Breakers) (enrich.Analyzer, error) {
	var completers []enrich.Completer
	if cfg.Anthropic.Key != "" {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		completers = append(completers, enrich.NewClaude(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, breakers.Get("anthropic")))
	}
	if cfg.Gemini.Key != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini.Key)
		if err != nil {
			return nil, eris.Wrap(err, "init gemini")
		}
		completers = append(completers, enrich.NewGemini(client, cfg.Gemini.Model, cfg.Gemini.MaxTokens, breakers.Get("gemini")))
	}
	if len(completers) == 0 {
		zap.L().Warn("no LLM key configured, enrichment disabled")
		return nil, nil
	}
	timeout := time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second
	return enrich.NewSiteAnalyzer(initScraper(), timeout, completers...), nil
}

// initSink stores reports in Notion when configured, falling back to files.
func initSink() report.Sink {
	local := report.FileSink{Dir: cfg.Output.Dir}
	if cfg.Notion.Token == "" || cfg.Notion.ReportParent == "" {
		return local
	}
	return report.FallbackSink{
		Primary:  report.NewNotionSink(notion.NewClient(cfg.Notion.Token), cfg.Notion.ReportParent),
		Fallback: local,
	}
}
