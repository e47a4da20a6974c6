package enrich

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/model"
)

type rawInsight struct {
	SEOScore                 json.RawMessage `json:"seo_score"`
	CriticalIssues           stringList      `json:"critical_issues"`
	RevenueImpact            string          `json:"revenue_impact"`
	Opportunities            stringList      `json:"opportunities"`
	ServicesOffered          stringList      `json:"services_offered"`
	UniqueSellingProposition string          `json:"unique_selling_proposition"`
	CallToActionQuality      string          `json:"call_to_action_quality"`
	TargetKeywords           stringList      `json:"target_keywords"`
	MissingKeywords          stringList      `json:"missing_keywords"`
	ContentQuality           string          `json:"content_quality"`
	QuickWins                stringList      `json:"quick_wins"`
	PitchAngle               string          `json:"pitch_angle"`
}

// stringList accepts either a JSON array of strings or a single string.
type stringList []string

func (s *stringList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = list
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	if one = strings.TrimSpace(one); one != "" {
		*s = []string{one}
	}
	return nil
}

// StripFences removes a surrounding Markdown code fence from a model reply.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseInsight decodes a model reply into an Insight. The seo_score may be a
// number or a numeric string and is clamped to 0-100; list fields default to
// empty. A missing revenue impact stays blank so Empty can see it.
func ParseInsight(text string) (*model.Insight, error) {
	body := StripFences(text)
	if body == "" {
		return nil, eris.New("enrich: empty model reply")
	}

	var raw rawInsight
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, eris.Wrap(err, "enrich: decode insight")
	}

	ins := &model.Insight{
		SEOScore:                 parseScore(raw.SEOScore),
		CriticalIssues:           nonNil(raw.CriticalIssues),
		RevenueImpact:            strings.TrimSpace(raw.RevenueImpact),
		Opportunities:            nonNil(raw.Opportunities),
		ServicesOffered:          nonNil(raw.ServicesOffered),
		UniqueSellingProposition: raw.UniqueSellingProposition,
		CallToActionQuality:      orDefault(raw.CallToActionQuality, "Unknown"),
		TargetKeywords:           nonNil(raw.TargetKeywords),
		MissingKeywords:          nonNil(raw.MissingKeywords),
		ContentQuality:           raw.ContentQuality,
		QuickWins:                nonNil(raw.QuickWins),
		PitchAngle:               raw.PitchAngle,
	}
	return ins, nil
}

func parseScore(raw json.RawMessage) *int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	v := int(math.Round(min(max(f, 0), 100)))
	return &v
}

func nonNil(s stringList) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
