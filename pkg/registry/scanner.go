package registry

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"aurora-hq/saturn/pkg/telemetry/logging"
)

// prefixMapping maps an environment key prefix to a provider type.
// Multiple prefixes may alias the same provider type; mappings are
// processed in order and the first writer wins per (type, slot).
type prefixMapping struct {
	Prefix   string
	Provider Type
}

// prefixMappings defines all known credential prefix to provider mappings.
var prefixMappings = []prefixMapping{
	{Prefix: "GEMINI", Provider: TypeGemini},
	{Prefix: "GOOGLE", Provider: TypeGemini},
	{Prefix: "OPENAI", Provider: TypeOpenAI},
	{Prefix: "ANTHROPIC", Provider: TypeAnthropic},
	{Prefix: "CLAUDE", Provider: TypeAnthropic},
	{Prefix: "HF", Provider: TypeHuggingFace},
	{Prefix: "HUGGINGFACE", Provider: TypeHuggingFace},
}

// placeholderPatterns match credential values that are clearly templates
// copied from documentation rather than real keys. Matching values are
// silently excluded before any network call.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^your[_-].*[_-]here$`),
	regexp.MustCompile(`(?i)^sk-your`),
	regexp.MustCompile(`(?i)^x{3,}$`),
	regexp.MustCompile(`(?i)^test.*key`),
}

// minCredentialLength is the shortest value accepted as a real credential.
const minCredentialLength = 8

// Scanner turns the process environment into a flat, deduplicated list of
// credentials and enumerates (credential, candidate model) pairs for the
// verifier.
type Scanner struct {
	// Environ supplies the environment as "KEY=value" entries.
	// Defaults to os.Environ; tests inject fixed slices.
	Environ func() []string

	// ModelOverrides maps a provider type name to an extra model id
	// appended to that type's candidate catalog.
	ModelOverrides map[string]string

	// Logger receives scan diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewScanner creates a scanner over the real process environment.
func NewScanner(modelOverrides map[string]string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		Environ:        os.Environ,
		ModelOverrides: modelOverrides,
		Logger:         logger.With("component", "registry"),
	}
}

// Credentials scans the environment for provider credentials.
//
// Two naming conventions are recognized per prefix: the keyed form
// PREFIX_API_KEY with an optional numeric suffix (PREFIX_API_KEY_2), and
// the single-slot token form PREFIX_TOKEN. Placeholder-looking values are
// filtered out. Results are sorted by provider type, then ascending slot.
func (s *Scanner) Credentials() []Credential {
	environ := s.Environ
	if environ == nil {
		environ = os.Environ
	}

	env := make(map[string]string)
	var order []string
	for _, entry := range environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, seen := env[key]; seen {
			continue
		}
		env[key] = value
		order = append(order, key)
	}

	// seen dedupes by (type, slot); the first matching pattern wins.
	seen := make(map[string]bool)
	var creds []Credential

	for _, mapping := range prefixMappings {
		keyPattern := regexp.MustCompile(`^` + mapping.Prefix + `_API_KEY(?:_(\d+))?$`)
		tokenKey := mapping.Prefix + "_TOKEN"

		for _, key := range order {
			value := env[key]

			var slot int
			switch {
			case keyPattern.MatchString(key):
				slot = 1
				if m := keyPattern.FindStringSubmatch(key); m[1] != "" {
					n, err := strconv.Atoi(m[1])
					if err != nil {
						continue
					}
					slot = n
				}
			case key == tokenKey:
				slot = 1
			default:
				continue
			}

			if !looksLikeCredential(value) {
				s.logger().Debug("skipping placeholder credential", "key", key)
				continue
			}

			dedupeKey := fmt.Sprintf("%s/%d", mapping.Provider, slot)
			if seen[dedupeKey] {
				continue
			}
			seen[dedupeKey] = true

			s.logger().Debug("registered credential",
				"key", key,
				"provider", string(mapping.Provider),
				"slot", slot,
				"value", logging.MaskSecret(value))
			creds = append(creds, Credential{
				Provider: mapping.Provider,
				Slot:     slot,
				Value:    value,
			})
		}
	}

	sort.Slice(creds, func(i, j int) bool {
		if creds[i].Provider != creds[j].Provider {
			return creds[i].Provider < creds[j].Provider
		}
		return creds[i].Slot < creds[j].Slot
	})

	s.logger().Info("credential scan complete", "credentials", len(creds))
	return creds
}

// Candidates produces the cross product of every scanned credential with
// its provider type's candidate model catalog.
func (s *Scanner) Candidates() []Candidate {
	var candidates []Candidate
	for _, cred := range s.Credentials() {
		for _, model := range Catalog(cred.Provider, s.ModelOverrides[string(cred.Provider)]) {
			candidates = append(candidates, Candidate{Credential: cred, Model: model})
		}
	}
	return candidates
}

// CredentialCounts returns the number of credentials per provider type.
// Labels switch to "(primary)" / "(key N)" suffixes when a type has more
// than one credential.
func CredentialCounts(creds []Credential) map[Type]int {
	counts := make(map[Type]int)
	for _, c := range creds {
		counts[c.Provider]++
	}
	return counts
}

// looksLikeCredential reports whether a value is plausibly a real key.
func looksLikeCredential(value string) bool {
	value = strings.TrimSpace(value)
	if len(value) < minCredentialLength {
		return false
	}
	for _, pattern := range placeholderPatterns {
		if pattern.MatchString(value) {
			return false
		}
	}
	return true
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
