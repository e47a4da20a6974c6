// Package report renders the hot-lead sales report and stores it.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/seo-leads/internal/model"
)

// Urgency labels by score band.
const (
	UrgencyCritical = "CRITICAL"
	UrgencyHigh     = "HIGH PRIORITY"
	UrgencyGood     = "GOOD OPPORTUNITY"
	UrgencyWatch    = "WORTH INVESTIGATING"
)

const (
	maxLLMIssues     = 3
	maxOpportunities = 5
	maxQuickWins     = 4
	maxServices      = 5
	na               = "N/A"
)

var (
	rule      = strings.Repeat("=", 80)
	leadRule  = strings.Repeat("=", 70)
	titleCase = cases.Title(language.English)
)

var genericOpportunities = []string{
	"Improve page speed and mobile experience",
	"Implement local SEO schema markup",
	"Refresh content with target keywords",
}

var genericQuickWins = []string{
	"Week 1: Speed optimization and mobile fixes",
	"Week 1: Schema markup implementation",
	"Week 2: Content refresh with local keywords",
	"Week 2: Technical SEO improvements",
}

// Report is a rendered document ready for a sink.
type Report struct {
	Title string
	Geo   string
	Date  time.Time
	Body  string
}

// Urgency returns the label for a score.
func Urgency(score int) string {
	switch {
	case score >= 90:
		return UrgencyCritical
	case score >= 80:
		return UrgencyHigh
	case score >= 70:
		return UrgencyGood
	default:
		return UrgencyWatch
	}
}

// Title returns the report title for geo on now's date.
func Title(geo string, now time.Time) string {
	return fmt.Sprintf("SEO Lead Intelligence Report - %s - %s", geo, now.Format(model.RunDateLayout))
}

// Build renders rows into a Report.
func Build(rows []model.ScoredRow, geo string, now time.Time) Report {
	return Report{Title: Title(geo, now), Geo: geo, Date: now, Body: Render(rows, geo, now)}
}

// Render produces the plain-text report for rows, best score first. Ties
// keep input order.
func Render(rows []model.ScoredRow, geo string, now time.Time) string {
	sorted := make([]model.ScoredRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	var b strings.Builder
	writeSummary(&b, sorted, geo, now)
	for i, r := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		writeLead(&b, r, i+1)
	}
	return b.String()
}

func writeSummary(b *strings.Builder, rows []model.ScoredRow, geo string, now time.Time) {
	var total, critical, high, good int
	for _, r := range rows {
		total += r.Score
		switch {
		case r.Score >= 90:
			critical++
		case r.Score >= 80:
			high++
		case r.Score >= 70:
			good++
		}
	}
	avg := 0.0
	if len(rows) > 0 {
		avg = float64(total) / float64(len(rows))
	}

	fmt.Fprintf(b, "%s\n%s\n%s\nGenerated: %s\n%s\n\n", rule, strings.ToUpper(Title(geo, now)), geo,
		now.Format("January 02, 2006 at 03:04 PM"), rule)
	b.WriteString("EXECUTIVE SUMMARY:\n\n")
	fmt.Fprintf(b, "Total Hot Leads: %d\n", len(rows))
	fmt.Fprintf(b, "Average Score: %.1f/100\n\n", avg)
	fmt.Fprintf(b, "Critical Priority (90+): %d\n", critical)
	fmt.Fprintf(b, "High Priority (80-89): %d\n", high)
	fmt.Fprintf(b, "Good Opportunity (70-79): %d\n\n", good)
	b.WriteString("RECOMMENDED ACTION:\n")
	b.WriteString("Start with the highest-scoring leads below. Each has been analyzed for critical\n")
	b.WriteString("technical issues, revenue impact, pitch angles, quick wins and call scripts.\n\n")
	b.WriteString(rule)
	b.WriteString("\n\n")
}

func writeLead(b *strings.Builder, r model.ScoredRow, rank int) {
	ins := r.Insight
	if ins == nil {
		ins = &model.Insight{}
	}
	name := orNA(r.Lead.Name)
	industry := orNA(displayIndustry(r.Industry))
	city := orNA(r.Lead.City)

	fmt.Fprintf(b, "%s\n#%d. %s\nScore: %d/100 (%s)\n%s\n\n", leadRule, rank, strings.ToUpper(name),
		r.Score, Urgency(r.Score), leadRule)

	fmt.Fprintf(b, "Phone: %s\n", orNA(r.Lead.Phone))
	fmt.Fprintf(b, "Website: %s\n", orNA(r.Lead.Website))
	fmt.Fprintf(b, "Location: %s\n", city)
	fmt.Fprintf(b, "Industry: %s\n", industry)
	fmt.Fprintf(b, "Tech Stack: %s\n\n", orNA(string(r.Audit.TechStack)))

	b.WriteString("CRITICAL ISSUES COSTING THEM CUSTOMERS:\n\n")
	listed := make(map[string]bool, len(r.Audit.Issues))
	n := 0
	for _, issue := range r.Audit.Issues {
		listed[issue] = true
		lines := explainIssue(issue, r.Audit)
		if lines == nil {
			continue
		}
		n++
		fmt.Fprintf(b, "%d. %s\n", n, lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(b, "   -> %s\n", l)
		}
		b.WriteString("\n")
	}
	shown := 0
	for _, issue := range ins.CriticalIssues {
		if shown == maxLLMIssues {
			break
		}
		if listed[issue] {
			continue
		}
		listed[issue] = true
		fmt.Fprintf(b, "* %s\n", issue)
		shown++
	}
	b.WriteString("\n")

	b.WriteString("ESTIMATED REVENUE IMPACT:\n")
	fmt.Fprintf(b, "   Monthly loss from SEO issues: %s\n\n", orDefault(ins.RevenueImpact, "Unknown"))

	b.WriteString("OPPORTUNITIES:\n\n")
	if len(ins.Opportunities) > 0 {
		for i, o := range head(ins.Opportunities, maxOpportunities) {
			fmt.Fprintf(b, "%d. %s\n", i+1, o)
		}
	} else {
		for _, o := range genericOpportunities {
			fmt.Fprintf(b, "* %s\n", o)
		}
	}
	b.WriteString("\n")

	b.WriteString("QUICK WINS (First 2 Weeks):\n\n")
	if len(ins.QuickWins) > 0 {
		for i, w := range head(ins.QuickWins, maxQuickWins) {
			fmt.Fprintf(b, "Week %d: %s\n", i/2+1, w)
		}
	} else {
		for _, w := range genericQuickWins {
			b.WriteString(w + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("PITCH ANGLE:\n\n")
	if ins.PitchAngle != "" {
		b.WriteString(ins.PitchAngle + "\n\n")
	} else {
		fmt.Fprintf(b, "\"I was analyzing %s in %s and noticed your website has some technical issues "+
			"that are costing you customers. Do you have 2 minutes for me to show you what I found?\"\n\n",
			orDefault(r.Industry, "businesses"), orDefault(r.Lead.City, "your area"))
	}

	b.WriteString("OPENING CALL SCRIPT:\n\n")
	fmt.Fprintf(b, "\"Hi, this is [YOUR NAME]. I was doing some research on %s in %s and came across %s. "+
		"I noticed a few things on your website that might be costing you customers - ",
		orDefault(r.Industry, "local businesses"), orDefault(r.Lead.City, "the area"), name)
	if len(r.Audit.Issues) > 0 {
		fmt.Fprintf(b, "specifically your %s. ", strings.ToLower(r.Audit.Issues[0]))
	}
	b.WriteString("Do you have a couple minutes to discuss how we could fix this?\"\n\n")

	if len(ins.ServicesOffered) > 0 {
		fmt.Fprintf(b, "SERVICES THEY OFFER:\n%s\n\n", strings.Join(head(ins.ServicesOffered, maxServices), ", "))
	}
	if ins.ContentQuality != "" {
		fmt.Fprintf(b, "CONTENT ASSESSMENT:\n%s\n\n", ins.ContentQuality)
	}
}

// explainIssue returns a headline and consequences for a known audit issue,
// or nil for tags without an explanation.
func explainIssue(issue string, a model.SiteAudit) []string {
	switch issue {
	case model.IssueSlowLCP:
		return []string{
			fmt.Sprintf("Website Loads in %.1f Seconds (Should be under 3s)", a.LCP),
			"53% of mobile users abandon sites that take >3s to load",
			"They're losing potential customers every day",
		}
	case model.IssueNoSchema:
		return []string{
			"Missing Schema Markup",
			"Not showing up in Google's local pack",
			"Competitors with schema get 30% more clicks",
		}
	case model.IssueStaleContent:
		return []string{
			fmt.Sprintf("Content Last Updated %d Months Ago", a.ContentFreshMonths),
			"Google penalizes stale content",
			"Ranking below competitors with fresh content",
		}
	case model.IssueTrafficDecline:
		return []string{
			fmt.Sprintf("Traffic Declining (%d%% over 90 days)", a.TrafficTrend90d),
			"Losing visibility in search results",
			"Competitors are taking their market share",
		}
	default:
		return nil
	}
}

func displayIndustry(s string) string {
	return titleCase.String(strings.TrimSpace(s))
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func orNA(s string) string { return orDefault(s, na) }

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
