package enrich

import (
	"fmt"
)

// SystemPrompt frames every analysis request.
const SystemPrompt = "You are an SEO sales consultant. Always respond with valid JSON."

const promptTemplate = `You are an expert SEO consultant analyzing a local business website to create a sales pitch.

Business: %s
Industry: %s
Website: %s

%s

Analyze this website and provide a JSON response with the following fields:

1. "seo_score" (0-100): Overall SEO quality score
2. "critical_issues" (array of strings): Top 3-5 SPECIFIC technical issues (e.g., "22 second load time on mobile", "Missing local business schema markup")
3. "revenue_impact" (string): Estimated monthly revenue loss from these issues (e.g., "$5,000-8,000")
4. "opportunities" (array of strings): Top 3-5 specific improvements with business impact
5. "services_offered" (array of strings): What services does this business offer?
6. "unique_selling_proposition" (string): What makes them different? (or "Not clear" if missing)
7. "call_to_action_quality" (string): "Strong", "Weak", or "Missing"
8. "target_keywords" (array of strings): What keywords are they targeting?
9. "missing_keywords" (array of strings): Important local keywords they're missing
10. "content_quality" (string): Brief assessment (2-3 sentences)
11. "quick_wins" (array of strings): 3-4 things we can fix in first 2 weeks
12. "pitch_angle" (string): Best angle to approach them (2-3 sentences focusing on their biggest pain point)

Be SPECIFIC with numbers, examples, and actionable insights. Think like a sales consultant, not just an SEO auditor.`

// BuildPrompt renders the analysis prompt for t over the extracted page text.
func BuildPrompt(t Target, content string) string {
	return fmt.Sprintf(promptTemplate, t.BusinessName, t.Industry, t.URL, content)
}
