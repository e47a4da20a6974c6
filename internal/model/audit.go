package model

// TechStack is the detected site platform.
type TechStack string

const (
	TechWordPress   TechStack = "WordPress"
	TechWix         TechStack = "Wix"
	TechSquarespace TechStack = "Squarespace"
	TechShopify     TechStack = "Shopify"
	TechCustom      TechStack = "Custom"
	TechUnknown     TechStack = "Unknown"
)

// Retrofittable reports whether the platform is cheap to retrofit for SEO work.
func (t TechStack) Retrofittable() bool {
	switch t {
	case TechWordPress, TechWix, TechSquarespace:
		return true
	default:
		return false
	}
}

// Issue tags derived from an audit.
const (
	IssueNoWebsite      = "No website URL provided"
	IssueSlowLCP        = "Slow LCP"
	IssueNoSchema       = "No Schema.org"
	IssueStaleContent   = "Stale Content"
	IssueTrafficDecline = "Traffic Decline"
)

// Signal thresholds shared by issue derivation and scoring.
const (
	SlowLCPSeconds        = 3.0
	StaleContentMonths    = 12
	TrafficDeclinePct     = -20
	DefaultLCPSeconds     = 3.0
	DefaultFreshMonths    = 6
	MissingWebsiteNote    = "Missing URL"
	PerformanceNotePrefix = "Performance Score: "
)

// SiteAudit is the normalized SEO-signal snapshot for one website.
type SiteAudit struct {
	LCP                float64   `json:"lcp"`
	HasSchema          bool      `json:"has_schema"`
	HasFAQ             bool      `json:"has_faq"`
	HasOrg             bool      `json:"has_org"`
	MetaTitleOK        bool      `json:"meta_title_ok"`
	MetaDescOK         bool      `json:"meta_desc_ok"`
	ContentFreshMonths int       `json:"content_fresh_months"`
	TrafficTrend90d    int       `json:"traffic_trend_90d"`
	TechStack          TechStack `json:"tech_stack"`
	Issues             []string  `json:"issues"`
	Notes              string    `json:"notes"`
}

// EmptyAudit is the audit for a lead with no website.
func EmptyAudit() SiteAudit {
	return SiteAudit{
		TechStack: TechUnknown,
		Issues:    []string{IssueNoWebsite},
		Notes:     MissingWebsiteNote,
	}
}

// SlowLCP reports whether LCP is strictly above the slow-page threshold.
func (a SiteAudit) SlowLCP() bool { return a.LCP > SlowLCPSeconds }

// StaleContent reports whether content is at least a year old.
func (a SiteAudit) StaleContent() bool { return a.ContentFreshMonths >= StaleContentMonths }

// TrafficDeclining reports whether the 90-day trend is at or below the decline threshold.
func (a SiteAudit) TrafficDeclining() bool { return a.TrafficTrend90d <= TrafficDeclinePct }

// DeriveIssues returns the issue tags for the audit in fixed check order.
func DeriveIssues(a SiteAudit) []string {
	issues := []string{}
	if a.SlowLCP() {
		issues = append(issues, IssueSlowLCP)
	}
	if !a.HasSchema {
		issues = append(issues, IssueNoSchema)
	}
	if a.StaleContent() {
		issues = append(issues, IssueStaleContent)
	}
	if a.TrafficDeclining() {
		issues = append(issues, IssueTrafficDecline)
	}
	return issues
}
