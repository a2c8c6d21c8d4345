package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildAnalysisPrompt renders the shared instruction prompt for issue
// analysis. Every backend uses the same prompt so results are
// comparable across providers.
func BuildAnalysisPrompt(req AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("You are an issue triage assistant. Analyze the following issue ")
	b.WriteString("and respond with a single JSON object and nothing else, using ")
	b.WriteString("exactly these fields:\n")
	b.WriteString(`{"summary": "<one-sentence summary>", "type": "<bug|feature|question|documentation|other>", "priority_score": <integer 1-10>, "suggested_labels": ["<label>", ...], "potential_impact": "<short impact assessment>"}`)
	b.WriteString("\n")
	if len(req.AllowedLabels) > 0 {
		b.WriteString("Only choose suggested_labels from this list: ")
		b.WriteString(strings.Join(req.AllowedLabels, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\nIssue:\n")
	b.WriteString(req.Context)
	return b.String()
}

// ParseAnalysis decodes a model reply into an IssueAnalysis, tolerating
// markdown fences and surrounding prose, and validates the required
// fields.
func ParseAnalysis(provider, reply string) (*IssueAnalysis, error) {
	var analysis IssueAnalysis
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &analysis); err != nil {
		return nil, &ParseError{Provider: provider, Detail: fmt.Sprintf("decode analysis: %v", err)}
	}
	if analysis.Summary == "" {
		return nil, &ParseError{Provider: provider, Detail: "analysis missing summary"}
	}
	if analysis.PriorityScore < 1 {
		analysis.PriorityScore = 1
	}
	if analysis.PriorityScore > 10 {
		analysis.PriorityScore = 10
	}
	if analysis.Type == "" {
		analysis.Type = "other"
	}
	return &analysis, nil
}
