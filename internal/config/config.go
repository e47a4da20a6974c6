package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	PageSpeed  PageSpeedConfig  `yaml:"pagespeed" mapstructure:"pagespeed"`
	Hunter     HunterConfig     `yaml:"hunter" mapstructure:"hunter"`
	Serp       SerpConfig       `yaml:"serp" mapstructure:"serp"`
	DataForSEO DataForSEOConfig `yaml:"dataforseo" mapstructure:"dataforseo"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Supabase   SupabaseConfig   `yaml:"supabase" mapstructure:"supabase"`
	Alert      AlertConfig      `yaml:"alert" mapstructure:"alert"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Industry   IndustryConfig   `yaml:"industry" mapstructure:"industry"`
	Schedule   ScheduleConfig   `yaml:"schedule" mapstructure:"schedule"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the aggregate row store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// PageSpeedConfig holds PageSpeed Insights settings.
type PageSpeedConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Strategy    string `yaml:"strategy" mapstructure:"strategy"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// HunterConfig holds Hunter.io email lookup settings.
type HunterConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// SerpConfig holds SerpAPI settings for industry demand.
type SerpConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// DataForSEOConfig holds DataForSEO SERP API credentials. When set, it is
// tried before SerpAPI for industry demand.
type DataForSEOConfig struct {
	Login    string `yaml:"login" mapstructure:"login"`
	Password string `yaml:"password" mapstructure:"password"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeminiConfig holds Google Gemini settings (LLM fallback).
type GeminiConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int32  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FirecrawlConfig holds Firecrawl API settings (scrape fallback only).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NotionConfig holds Notion settings for the report sink.
type NotionConfig struct {
	Token        string `yaml:"token" mapstructure:"token"`
	ReportParent string `yaml:"report_parent" mapstructure:"report_parent"`
}

// SupabaseConfig holds the secondary aggregate store settings.
type SupabaseConfig struct {
	URL   string `yaml:"url" mapstructure:"url"`
	Key   string `yaml:"key" mapstructure:"key"`
	Table string `yaml:"table" mapstructure:"table"`
}

// AlertConfig configures hot-lead notifications and run health checks.
type AlertConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	MaxLeads             int     `yaml:"max_leads" mapstructure:"max_leads"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	LookbackHours        int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// PipelineConfig configures lead evaluation.
type PipelineConfig struct {
	DefaultGeo         string `yaml:"default_geo" mapstructure:"default_geo"`
	LeadsPerIndustry   int    `yaml:"leads_per_industry" mapstructure:"leads_per_industry"`
	HotThreshold       int    `yaml:"hot_threshold" mapstructure:"hot_threshold"`
	EnrichThreshold    int    `yaml:"enrich_threshold" mapstructure:"enrich_threshold"`
	MaxIndustries      int    `yaml:"max_industries" mapstructure:"max_industries"`
	MaxConcurrentLeads int    `yaml:"max_concurrent_leads" mapstructure:"max_concurrent_leads"`
	TrendSource        string `yaml:"trend_source" mapstructure:"trend_source"`
}

// IndustryConfig configures the industry demand ranker.
type IndustryConfig struct {
	CatalogPath string             `yaml:"catalog_path" mapstructure:"catalog_path"`
	Penalties   map[string]float64 `yaml:"penalties" mapstructure:"penalties"`
}

// ScheduleConfig configures the weekly run.
type ScheduleConfig struct {
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
	Weekday  string `yaml:"weekday" mapstructure:"weekday"`
	Hour     int    `yaml:"hour" mapstructure:"hour"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// OutputConfig configures local run artifacts.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SEOLEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// secretKeys have no default value but must still be registered so that
// AutomaticEnv picks them up during Unmarshal.
var secretKeys = []string{
	"google.key",
	"pagespeed.key",
	"hunter.key",
	"serp.key",
	"dataforseo.login",
	"dataforseo.password",
	"anthropic.key",
	"gemini.key",
	"firecrawl.key",
	"notion.token",
	"notion.report_parent",
	"supabase.url",
	"supabase.key",
	"alert.webhook_url",
	"industry.catalog_path",
}

func setDefaults(v *viper.Viper) {
	for _, k := range secretKeys {
		v.SetDefault(k, "")
	}
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "seo-leads.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("google.rate_limit", 5.0)
	v.SetDefault("pagespeed.strategy", "mobile")
	v.SetDefault("pagespeed.timeout_secs", 60)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.timeout_secs", 45)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.max_tokens", 2048)
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("supabase.table", "scored_rows")
	v.SetDefault("alert.max_leads", 10)
	v.SetDefault("alert.failure_rate_threshold", 0.5)
	v.SetDefault("alert.lookback_hours", 168)
	v.SetDefault("alert.check_interval_secs", 3600)
	v.SetDefault("pipeline.default_geo", "Houston, TX")
	v.SetDefault("pipeline.leads_per_industry", 30)
	v.SetDefault("pipeline.hot_threshold", 70)
	v.SetDefault("pipeline.enrich_threshold", 60)
	v.SetDefault("pipeline.max_industries", 5)
	v.SetDefault("pipeline.max_concurrent_leads", 4)
	v.SetDefault("pipeline.trend_source", "zero")
	v.SetDefault("industry.penalties", map[string]float64{
		"law firms":    0.8,
		"auto dealers": 0.8,
		"medspas":      0.8,
	})
	v.SetDefault("schedule.timezone", "America/Chicago")
	v.SetDefault("schedule.weekday", "sunday")
	v.SetDefault("schedule.hour", 9)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("output.dir", "./out")
	v.SetDefault("output.format", "csv")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
