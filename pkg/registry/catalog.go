package registry

// defaultCatalog lists the default model per provider type. Exactly one
// model per type, so a single credential yields a single entry; extra
// models come in through discovery.model_overrides.
var defaultCatalog = map[Type][]CandidateModel{
	TypeGemini: {
		{Provider: TypeGemini, Model: "gemini-2.0-flash", DisplayName: "Gemini 2.0 Flash"},
	},
	TypeOpenAI: {
		{Provider: TypeOpenAI, Model: "gpt-4o-mini", DisplayName: "GPT-4o Mini"},
	},
	TypeAnthropic: {
		{Provider: TypeAnthropic, Model: "claude-3-5-haiku-latest", DisplayName: "Claude 3.5 Haiku"},
	},
	TypeHuggingFace: {
		{Provider: TypeHuggingFace, Model: "meta-llama/Llama-3.2-3B-Instruct", DisplayName: "Llama 3.2 3B"},
	},
}

// Catalog returns the candidate models for a provider type. When override
// names a model not already in the catalog, it is appended with its
// identifier doubling as the display name.
func Catalog(t Type, override string) []CandidateModel {
	base := defaultCatalog[t]
	models := make([]CandidateModel, len(base))
	copy(models, base)

	if override == "" {
		return models
	}
	for _, m := range models {
		if m.Model == override {
			return models
		}
	}
	return append(models, CandidateModel{
		Provider:    t,
		Model:       override,
		DisplayName: override,
	})
}
