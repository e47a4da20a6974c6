package audit

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/scrape"
)

// Meta length bounds that search engines display without truncation.
const (
	titleMinLen = 30
	titleMaxLen = 60
	descMinLen  = 120
	descMaxLen  = 160
	freshYears  = 2
	minFreshAge = 2
)

// HTMLInspector fetches a page and reads structural SEO signals from it.
type HTMLInspector struct {
	scraper scrape.Scraper
	now     func() time.Time
}

// NewHTMLInspector creates an HTMLInspector backed by scraper.
func NewHTMLInspector(scraper scrape.Scraper) *HTMLInspector {
	return &HTMLInspector{scraper: scraper, now: time.Now}
}

// Inspect implements Inspector.
func (h *HTMLInspector) Inspect(ctx context.Context, url string) (*Structure, error) {
	res, err := h.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "audit: fetch html")
	}
	st, err := InspectHTML(res.HTML, h.now())
	if err != nil {
		return nil, err
	}
	return st, nil
}

// InspectHTML reads structural signals from a page body. now fixes the
// current year for the freshness estimate.
func InspectHTML(html string, now time.Time) (*Structure, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "audit: parse html")
	}

	st := &Structure{
		HasSchema: doc.Find("[itemtype]").Length() > 0 ||
			doc.Find(`script[type="application/ld+json"]`).Length() > 0,
		HasFAQ:             strings.Contains(html, "FAQPage") || strings.Contains(html, "Question"),
		HasOrg:             strings.Contains(html, "Organization"),
		TechStack:          DetectTechStack(html),
		ContentFreshMonths: freshnessMonths(html, now.Year()),
	}

	if title := doc.Find("title").First(); title.Length() > 0 {
		n := utf8.RuneCountInString(strings.TrimSpace(title.Text()))
		st.MetaTitleOK = n >= titleMinLen && n <= titleMaxLen
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		n := utf8.RuneCountInString(desc)
		st.MetaDescOK = n >= descMinLen && n <= descMaxLen
	}
	return st, nil
}

// DetectTechStack identifies the site platform from markers in the HTML.
func DetectTechStack(html string) model.TechStack {
	lower := strings.ToLower(html)
	switch {
	case strings.Contains(lower, "wp-content") || strings.Contains(lower, "wordpress"):
		return model.TechWordPress
	case strings.Contains(lower, "wix.com") || strings.Contains(lower, "_wix"):
		return model.TechWix
	case strings.Contains(lower, "squarespace") || strings.Contains(lower, "sqsp"):
		return model.TechSquarespace
	case strings.Contains(lower, "shopify"):
		return model.TechShopify
	default:
		return model.TechCustom
	}
}

// freshnessMonths estimates content age from the years mentioned on the page.
// Years are checked oldest first across the last two years; the first hit
// sets the age, with a floor of two months. No hit assumes six months.
func freshnessMonths(html string, year int) int {
	for y := year - freshYears; y <= year; y++ {
		if strings.Contains(html, strconv.Itoa(y)) {
			return max(minFreshAge, (year-y)*12)
		}
	}
	return model.DefaultFreshMonths
}
