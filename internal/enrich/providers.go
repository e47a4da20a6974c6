package enrich

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/resilience"
	"github.com/sells-group/seo-leads/pkg/anthropic"
	"github.com/sells-group/seo-leads/pkg/gemini"
)

// Claude completes prompts with the Anthropic Messages API.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	breaker   *resilience.Breaker
}

// NewClaude creates a Claude completer. A nil breaker disables breaking.
func NewClaude(client anthropic.Client, model string, maxTokens int64, breaker *resilience.Breaker) *Claude {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Claude{client: client, model: model, maxTokens: maxTokens, breaker: breaker}
}

// Name implements Completer.
func (c *Claude) Name() string { return "anthropic" }

// Complete implements Completer.
func (c *Claude) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := resilience.Call(ctx, c.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return c.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			System:    []anthropic.SystemBlock{{Text: system}},
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: claude")
	}
	resp.Usage.LogCost(c.model, "enrich")
	return resp.Text(), nil
}

// Gemini completes prompts with the Gemini API in JSON mode.
type Gemini struct {
	client    gemini.Client
	model     string
	maxTokens int32
	breaker   *resilience.Breaker
}

// NewGemini creates a Gemini completer. A nil breaker disables breaking.
func NewGemini(client gemini.Client, model string, maxTokens int32, breaker *resilience.Breaker) *Gemini {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Gemini{client: client, model: model, maxTokens: maxTokens, breaker: breaker}
}

// Name implements Completer.
func (g *Gemini) Name() string { return "gemini" }

// Complete implements Completer.
func (g *Gemini) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := resilience.Call(ctx, g.breaker, func(ctx context.Context) (*gemini.GenerateResponse, error) {
		return g.client.Generate(ctx, gemini.GenerateRequest{
			Model:     g.model,
			System:    system,
			Prompt:    prompt,
			MaxTokens: g.maxTokens,
			JSON:      true,
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: gemini")
	}
	return resp.Text, nil
}
