package registry

// Type identifies a provider family (one LLM API vendor).
type Type string

// Known provider types.
const (
	TypeGemini      Type = "gemini"
	TypeOpenAI      Type = "openai"
	TypeAnthropic   Type = "anthropic"
	TypeHuggingFace Type = "huggingface"
)

// AllTypes lists every known provider type in deterministic order.
func AllTypes() []Type {
	return []Type{TypeGemini, TypeOpenAI, TypeAnthropic, TypeHuggingFace}
}

// Credential is one API key discovered in the credential store.
// Credentials are unique by (Provider, Slot) and never mutated after a scan.
type Credential struct {
	// Provider is the provider type this credential belongs to.
	Provider Type

	// Slot is the key slot number. Unsuffixed environment keys occupy
	// slot 1; GEMINI_API_KEY_2 occupies slot 2.
	Slot int

	// Value is the secret credential value. It stays server-side and is
	// excluded from all public projections and log output.
	Value string
}

// CandidateModel is one model identifier offered by a provider type.
type CandidateModel struct {
	// Provider is the provider type that serves this model.
	Provider Type

	// Model is the vendor model identifier (e.g., "gemini-2.0-flash").
	Model string

	// DisplayName is the human-readable model name used in labels.
	DisplayName string
}

// Candidate is a (credential, candidate model) pair awaiting verification.
type Candidate struct {
	Credential Credential
	Model      CandidateModel
}
