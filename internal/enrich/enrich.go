// Package enrich asks an LLM for a structured sales analysis of a lead's
// website. Claude is the primary provider; Gemini is the fallback.
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/scrape"
)

// ErrNoContent is returned when the website yields no readable page.
var ErrNoContent = eris.New("enrich: no page content")

// Target identifies the site to analyze.
type Target struct {
	URL          string
	BusinessName string
	Industry     string
}

// Analyzer produces an insight for a website.
type Analyzer interface {
	Analyze(ctx context.Context, t Target) (*model.Insight, error)
}

// Completer runs one prompt against an LLM provider and returns its raw text.
type Completer interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// SiteAnalyzer fetches a page, prompts each completer in order, and returns
// the first insight that parses.
type SiteAnalyzer struct {
	scraper    scrape.Scraper
	completers []Completer
	timeout    time.Duration
}

// NewSiteAnalyzer creates a SiteAnalyzer. timeout bounds each provider call.
func NewSiteAnalyzer(scraper scrape.Scraper, timeout time.Duration, completers ...Completer) *SiteAnalyzer {
	return &SiteAnalyzer{scraper: scraper, completers: completers, timeout: timeout}
}

// Analyze implements Analyzer.
func (a *SiteAnalyzer) Analyze(ctx context.Context, t Target) (*model.Insight, error) {
	url := scrape.NormalizeURL(t.URL)
	if url == "" {
		return nil, ErrNoContent
	}
	if len(a.completers) == 0 {
		return nil, eris.New("enrich: no llm provider configured")
	}

	res, err := a.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(ErrNoContent, "fetch %s: %v", url, err)
	}
	content := ExtractPageText(res.HTML)
	if strings.TrimSpace(content) == "" {
		return nil, ErrNoContent
	}
	t.URL = url
	prompt := BuildPrompt(t, content)

	log := zap.L().With(zap.String("website", url))
	var errs []string
	for _, c := range a.completers {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "enrich: analyze")
		}
		insight, err := a.try(ctx, c, prompt)
		if err == nil {
			log.Debug("enrich: analyzed", zap.String("provider", c.Name()))
			return insight, nil
		}
		log.Warn("enrich: provider failed", zap.String("provider", c.Name()), zap.Error(err))
		errs = append(errs, c.Name()+": "+err.Error())
	}
	return nil, eris.Errorf("enrich: all providers failed: %s", strings.Join(errs, "; "))
}

func (a *SiteAnalyzer) try(ctx context.Context, c Completer, prompt string) (*model.Insight, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	text, err := c.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return ParseInsight(text)
}
