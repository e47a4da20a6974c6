package model

import (
	"strconv"
	"strings"
)

// RunDateLayout is the date format used for ScoredRow.RunDate.
const RunDateLayout = "2006-01-02"

// ScoredRow is the flattened record persisted and reported per evaluated lead.
type ScoredRow struct {
	RunID    string    `json:"run_id"`
	RunDate  string    `json:"run_date"`
	Geo      string    `json:"geo"`
	Industry string    `json:"industry"`
	Lead     Lead      `json:"lead"`
	Audit    SiteAudit `json:"audit"`
	Score    int       `json:"score"`
	Insight  *Insight  `json:"insight,omitempty"`
}

var rowColumns = []string{
	"RunDate", "Geo", "Industry", "BusinessName", "Website", "Email", "Phone", "City",
	"TechStack", "CoreWebVitals_LCP", "HasSchema", "HasFAQ", "HasOrg", "MetaTitleOK",
	"MetaDescOK", "ContentFreshMonths", "TrafficTrend_90d", "Issues", "Score", "Notes",
	"Source", "LLM_SEOScore", "LLM_CriticalIssues", "LLM_RevenueImpact", "LLM_Opportunities",
	"LLM_ServicesOffered", "LLM_USP", "LLM_CTAQuality", "LLM_TargetKeywords",
	"LLM_MissingKeywords", "LLM_ContentQuality", "LLM_QuickWins", "LLM_PitchAngle",
}

// Columns returns the archive column order.
func Columns() []string {
	out := make([]string, len(rowColumns))
	copy(out, rowColumns)
	return out
}

// Values flattens the row into strings in Columns order.
func (r ScoredRow) Values() []string {
	ins := r.Insight
	if ins == nil {
		ins = &Insight{}
	}
	seo := ""
	if ins.SEOScore != nil {
		seo = strconv.Itoa(*ins.SEOScore)
	}

	return []string{
		r.RunDate,
		r.Geo,
		r.Industry,
		r.Lead.Name,
		r.Lead.Website,
		r.Lead.Email,
		r.Lead.Phone,
		r.Lead.City,
		string(r.Audit.TechStack),
		strconv.FormatFloat(r.Audit.LCP, 'f', 2, 64),
		strconv.FormatBool(r.Audit.HasSchema),
		strconv.FormatBool(r.Audit.HasFAQ),
		strconv.FormatBool(r.Audit.HasOrg),
		strconv.FormatBool(r.Audit.MetaTitleOK),
		strconv.FormatBool(r.Audit.MetaDescOK),
		strconv.Itoa(r.Audit.ContentFreshMonths),
		strconv.Itoa(r.Audit.TrafficTrend90d),
		strings.Join(r.Audit.Issues, ", "),
		strconv.Itoa(r.Score),
		r.Audit.Notes,
		string(r.Lead.Source),
		seo,
		joinList(ins.CriticalIssues),
		ins.RevenueImpact,
		joinList(ins.Opportunities),
		joinList(ins.ServicesOffered),
		ins.UniqueSellingProposition,
		ins.CallToActionQuality,
		joinList(ins.TargetKeywords),
		joinList(ins.MissingKeywords),
		ins.ContentQuality,
		joinList(ins.QuickWins),
		ins.PitchAngle,
	}
}

// Record returns the row keyed by column name, for document stores.
func (r ScoredRow) Record() map[string]string {
	vals := r.Values()
	out := make(map[string]string, len(rowColumns))
	for i, c := range rowColumns {
		out[c] = vals[i]
	}
	return out
}

// Hot reports whether the row meets the given hot-lead threshold.
func (r ScoredRow) Hot(threshold int) bool {
	return r.Score >= threshold
}

func joinList(items []string) string {
	return strings.Join(items, "; ")
}
