package model

// Insight is the structured sales analysis an LLM produces for one website.
type Insight struct {
	SEOScore                 *int     `json:"seo_score,omitempty"`
	CriticalIssues           []string `json:"critical_issues"`
	RevenueImpact            string   `json:"revenue_impact"`
	Opportunities            []string `json:"opportunities"`
	ServicesOffered          []string `json:"services_offered"`
	UniqueSellingProposition string   `json:"unique_selling_proposition"`
	CallToActionQuality      string   `json:"call_to_action_quality"`
	TargetKeywords           []string `json:"target_keywords"`
	MissingKeywords          []string `json:"missing_keywords"`
	ContentQuality           string   `json:"content_quality"`
	QuickWins                []string `json:"quick_wins"`
	PitchAngle               string   `json:"pitch_angle"`
}

// Empty reports whether the insight carries no usable content.
func (i *Insight) Empty() bool {
	if i == nil {
		return true
	}
	return i.SEOScore == nil &&
		len(i.CriticalIssues) == 0 &&
		i.RevenueImpact == "" &&
		len(i.Opportunities) == 0 &&
		len(i.QuickWins) == 0 &&
		i.PitchAngle == ""
}
