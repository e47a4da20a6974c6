package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/config"
	"github.com/sells-group/seo-leads/internal/model"
)

// maxIssueChars caps the issue summary in one hot-lead block.
const maxIssueChars = 150

// minFinishedRuns is the sample size below which the failure rate is ignored.
const minFinishedRuns = 3

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertRunFailureRate AlertType = "run_failure_rate"
	AlertHotLeads       AlertType = "hot_leads"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter posts alerts and hot-lead digests to a Slack-compatible webhook.
type Alerter struct {
	cfg    config.AlertConfig
	client *http.Client
	now    func() time.Time
}

// NewAlerter creates a new Alerter with the given alert config.
func NewAlerter(cfg config.AlertConfig) *Alerter {
	if cfg.MaxLeads <= 0 {
		cfg.MaxLeads = 10
	}
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *Snapshot) []Alert {
	var alerts []Alert
	finished := snap.Finished()
	if a.cfg.FailureRateThreshold > 0 && finished >= minFinishedRuns && snap.FailureRate > a.cfg.FailureRateThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertRunFailureRate,
			Severity: "high",
			Message: fmt.Sprintf(
				"Run failure rate %.1f%% exceeds threshold %.1f%% (%d failed / %d finished in last %dh)",
				snap.FailureRate*100, a.cfg.FailureRateThreshold*100,
				snap.RunsFailed, finished, snap.LookbackHours,
			),
			Details: map[string]any{
				"failure_rate": snap.FailureRate,
				"threshold":    a.cfg.FailureRateThreshold,
				"failed":       snap.RunsFailed,
				"finished":     finished,
			},
			Timestamp: a.now().UTC(),
		})
	}
	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.post(ctx, slackMessage{Text: alert.Message}); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// NotifyHotLeads posts the best hot rows of a run. rows must already be
// sorted best first; at most cfg.MaxLeads are included.
func (a *Alerter) NotifyHotLeads(ctx context.Context, run model.Run, rows []model.ScoredRow) error {
	if a.cfg.WebhookURL == "" || len(rows) == 0 {
		return nil
	}
	if len(rows) > a.cfg.MaxLeads {
		rows = rows[:a.cfg.MaxLeads]
	}
	if err := a.post(ctx, hotLeadMessage(run, rows)); err != nil {
		return err
	}
	zap.L().Info("monitoring: hot leads posted",
		zap.String("run_id", run.ID),
		zap.Int("leads", len(rows)),
	)
	return nil
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks,omitempty"`
}

func hotLeadMessage(run model.Run, rows []model.ScoredRow) slackMessage {
	header := fmt.Sprintf("%d hot SEO leads in %s", len(rows), run.Geo)
	msg := slackMessage{
		Text: header,
		Blocks: []slackBlock{
			{Type: "header", Text: &slackText{Type: "plain_text", Text: header}},
		},
	}
	for i, r := range rows {
		var b strings.Builder
		fmt.Fprintf(&b, "*%d. %s* (%d/100)\n", i+1, r.Lead.Name, r.Score)
		fmt.Fprintf(&b, "%s | %s", r.Industry, orNA(r.Lead.Website))
		if r.Lead.Phone != "" {
			fmt.Fprintf(&b, " | %s", r.Lead.Phone)
		}
		email := r.Lead.Email
		if email == "" {
			email = "no email yet"
		}
		fmt.Fprintf(&b, "\n%s | %s", email, orNA(r.Lead.City))
		if len(r.Audit.Issues) > 0 {
			fmt.Fprintf(&b, "\nIssues: %s", clip(strings.Join(r.Audit.Issues, ", "), maxIssueChars))
		}
		msg.Blocks = append(msg.Blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: b.String()},
		})
	}
	if run.ReportRef != "" {
		msg.Blocks = append(msg.Blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "Full report: " + run.ReportRef},
		})
	}
	return msg
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func (a *Alerter) post(ctx context.Context, msg slackMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
