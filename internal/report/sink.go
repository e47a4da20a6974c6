package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/pkg/notion"
)

// Sink stores a rendered report and returns where it went (path or URL).
type Sink interface {
	Store(ctx context.Context, r Report) (string, error)
}

// FileSink writes reports as text files under Dir.
type FileSink struct {
	Dir string
}

// Path returns the file a report is written to.
func (s FileSink) Path(r Report) string {
	slug := strings.ReplaceAll(strings.ReplaceAll(r.Geo, ", ", "_"), " ", "_")
	name := "sales_report_" + slug + "_" + r.Date.Format(model.RunDateLayout) + ".txt"
	return filepath.Join(s.Dir, name)
}

// Store implements Sink.
func (s FileSink) Store(_ context.Context, r Report) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", eris.Wrap(err, "report: create output dir")
	}
	path := s.Path(r)
	if err := os.WriteFile(path, []byte(r.Body), 0o644); err != nil {
		return "", eris.Wrapf(err, "report: write %s", path)
	}
	return path, nil
}

// NotionSink creates one Notion page per report under a parent page.
type NotionSink struct {
	client   notion.Client
	parentID string
}

// NewNotionSink creates a NotionSink.
func NewNotionSink(client notion.Client, parentID string) *NotionSink {
	return &NotionSink{client: client, parentID: parentID}
}

// Store implements Sink.
func (s *NotionSink) Store(ctx context.Context, r Report) (string, error) {
	url, err := notion.CreateDocument(ctx, s.client, s.parentID, r.Title, r.Body)
	if err != nil {
		return "", eris.Wrap(err, "report: notion")
	}
	return url, nil
}

// FallbackSink stores with Primary and falls back to Fallback when the
// primary fails.
type FallbackSink struct {
	Primary  Sink
	Fallback Sink
}

// Store implements Sink.
func (s FallbackSink) Store(ctx context.Context, r Report) (string, error) {
	ref, err := s.Primary.Store(ctx, r)
	if err == nil {
		return ref, nil
	}
	zap.L().Warn("report: primary sink failed, storing locally", zap.Error(err))
	ref, ferr := s.Fallback.Store(ctx, r)
	if ferr != nil {
		return "", eris.Wrapf(ferr, "report: fallback after %v", err)
	}
	return ref, nil
}
