package discovery

import "strings"

// Speed is the coarse latency category shown to callers.
type Speed string

const (
	SpeedFast      Speed = "Fast"
	SpeedMedium    Speed = "Medium"
	SpeedSlow      Speed = "Slow"
	SpeedReasoning Speed = "Reasoning"
	SpeedStandard  Speed = "Standard"
)

// speedFromLatency maps a measured round-trip latency to a category.
func speedFromLatency(ms int64) Speed {
	switch {
	case ms < 1000:
		return SpeedFast
	case ms < 3000:
		return SpeedMedium
	default:
		return SpeedSlow
	}
}

// speedFromModel guesses a category from model-name conventions when no
// latency measurement exists. Keywords match whole name segments so that
// "mini" does not fire inside "gemini".
func speedFromModel(model string) Speed {
	segments := strings.FieldsFunc(strings.ToLower(model), func(r rune) bool {
		return r == '-' || r == '.' || r == '/' || r == '_' || r == ' '
	})
	has := func(keywords ...string) bool {
		for _, seg := range segments {
			for _, kw := range keywords {
				if seg == kw {
					return true
				}
			}
		}
		return false
	}
	switch {
	case has("opus", "o1", "r1", "reasoning"):
		return SpeedReasoning
	case has("mini", "flash", "haiku"):
		return SpeedFast
	case has("pro", "sonnet"):
		return SpeedMedium
	default:
		return SpeedStandard
	}
}

// classifySpeed prefers a real measurement over name heuristics.
func classifySpeed(model string, latencyMs *int64) Speed {
	if latencyMs != nil {
		return speedFromLatency(*latencyMs)
	}
	return speedFromModel(model)
}
