package providers

// ProbeStatus classifies the outcome of a single probe attempt.
type ProbeStatus string

const (
	// ProbeOK means both verification steps succeeded.
	ProbeOK ProbeStatus = "ok"

	// ProbeRateLimited means the backend reported a quota or rate-limit
	// condition. The credential may still be valid.
	ProbeRateLimited ProbeStatus = "rate_limited"

	// ProbeError means the probe failed for a reason other than
	// rate limiting or an invalid credential.
	ProbeError ProbeStatus = "error"

	// ProbeUnavailable means the credential was rejected outright.
	ProbeUnavailable ProbeStatus = "unavailable"
)

// ProbeResult carries the classified outcome of a probe together with
// the measured round-trip latency and a short human-readable detail for
// non-OK outcomes.
type ProbeResult struct {
	Status    ProbeStatus
	LatencyMs int64
	Detail    string
}

// AnalysisRequest is the input to a real analysis call.
type AnalysisRequest struct {
	// Context is the free-form issue text to analyze.
	Context string `json:"context"`

	// AllowedLabels constrains which labels the model may suggest.
	// Empty means no constraint.
	AllowedLabels []string `json:"allowed_labels,omitempty"`
}

// IssueAnalysis is the structured result produced by a backend model.
type IssueAnalysis struct {
	Summary         string   `json:"summary"`
	Type            string   `json:"type"`
	PriorityScore   int      `json:"priority_score"`
	SuggestedLabels []string `json:"suggested_labels"`
	PotentialImpact string   `json:"potential_impact"`
}
