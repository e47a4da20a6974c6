package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/seo-leads/pkg/firecrawl"
	firecrawlmocks "github.com/sells-group/seo-leads/pkg/firecrawl/mocks"
)

func TestFirecrawlAdapter_NameSupports(t *testing.T) {
	t.Parallel()
	adapter := NewFirecrawlAdapter(firecrawlmocks.NewMockClient(t))
	assert.Equal(t, "firecrawl", adapter.Name())
	assert.True(t, adapter.Supports("https://example.com"))
}

func TestFirecrawlAdapter_Scrape_Success(t *testing.T) {
	t.Parallel()
	m := firecrawlmocks.NewMockClient(t)
	adapter := NewFirecrawlAdapter(m)

	m.On("Scrape", context.Background(), firecrawl.ScrapeRequest{
		URL:     "https://acme.com",
		Formats: []string{firecrawl.FormatRawHTML},
	}).Return(&firecrawl.ScrapeResponse{
		Success: true,
		Data: firecrawl.PageData{
			RawHTML:  "<html><title>Acme</title></html>",
			Metadata: firecrawl.Metadata{SourceURL: "https://www.acme.com/", StatusCode: 200},
		},
	}, nil)

	result, err := adapter.Scrape(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "firecrawl", result.Source)
	assert.Equal(t, "https://www.acme.com/", result.URL)
	assert.Equal(t, "<html><title>Acme</title></html>", result.HTML)
	assert.Equal(t, 200, result.StatusCode)
}

func TestFirecrawlAdapter_Scrape_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *firecrawl.ScrapeResponse
		err     error
		wantErr string
	}{
		{"api error", nil, errors.New("firecrawl: HTTP 500"), "HTTP 500"},
		{"unsuccessful", &firecrawl.ScrapeResponse{Success: false}, nil, "not successful"},
		{"empty html", &firecrawl.ScrapeResponse{Success: true}, nil, "empty page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := firecrawlmocks.NewMockClient(t)
			m.On("Scrape", context.Background(), firecrawl.ScrapeRequest{
				URL:     "https://acme.com",
				Formats: []string{firecrawl.FormatRawHTML},
			}).Return(tt.resp, tt.err)

			result, err := NewFirecrawlAdapter(m).Scrape(context.Background(), "https://acme.com")
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
