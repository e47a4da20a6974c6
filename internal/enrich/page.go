package enrich

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxPreviewRunes caps the page text sent to the model.
const MaxPreviewRunes = 3000

// ExtractPageText renders the parts of a page the model reads: title, meta
// description, and a whitespace-collapsed text preview without scripts,
// styles, navigation, or footers. Unparseable input yields "".
func ExtractPageText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title"
	}
	desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content")
	if !ok {
		desc = "No description"
	}

	doc.Find("script, style, nav, footer, noscript").Remove()
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if text == "" {
		text = strings.Join(strings.Fields(doc.Text()), " ")
	}
	if text == "" && title == "No title" && !ok {
		return ""
	}
	text = truncateRunes(text, MaxPreviewRunes)

	var b strings.Builder
	b.WriteString("TITLE: ")
	b.WriteString(title)
	b.WriteString("\nMETA DESCRIPTION: ")
	b.WriteString(desc)
	b.WriteString("\nCONTENT PREVIEW: ")
	b.WriteString(text)
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
