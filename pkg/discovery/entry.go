package discovery

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"aurora-hq/saturn/pkg/registry"
)

// Entry is one (credential, candidate model) pairing with its current
// availability verdict. Entries are owned by the Cache; callers receive
// copies.
type Entry struct {
	// ID is the stable identifier derived from provider type, slot and
	// model. The router and runtime status patches key on it.
	ID string

	// Label is the human-readable name shown to callers, e.g.
	// "Gemini Flash 2.0 (primary)".
	Label string

	Provider    registry.Type
	Model       string
	DisplayName string
	Slot        int

	// APIKey is the credential backing this entry. It never leaves the
	// process and is excluded from the public view and JSON output.
	APIKey string `json:"-"`

	Status Status

	// LatencyMs is the measured or estimated round-trip latency.
	// Nil means no measurement or estimate exists; such entries sort
	// after entries with a value.
	LatencyMs *int64

	Speed     Speed
	Detail    string
	CheckedAt time.Time
}

// View is the public-safe projection of an Entry.
type View struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Status    Status    `json:"status"`
	LatencyMs *int64    `json:"latency_ms"`
	Speed     Speed     `json:"speed"`
	Detail    string    `json:"detail,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// View returns the credential-free projection of the entry.
func (e *Entry) View() View {
	v := View{
		ID:        e.ID,
		Label:     e.Label,
		Provider:  string(e.Provider),
		Model:     e.Model,
		Status:    e.Status,
		Speed:     e.Speed,
		Detail:    e.Detail,
		CheckedAt: e.CheckedAt,
	}
	if e.LatencyMs != nil {
		ms := *e.LatencyMs
		v.LatencyMs = &ms
	}
	return v
}

// clone returns a deep copy so callers can never reach cache-owned state.
func (e *Entry) clone() Entry {
	out := *e
	if e.LatencyMs != nil {
		ms := *e.LatencyMs
		out.LatencyMs = &ms
	}
	return out
}

// maxIDSegment caps the sanitized model segment of an entry id.
const maxIDSegment = 20

// EntryID derives the stable identifier for a (provider, slot, model)
// triple: the model's trailing path segment, lowercased with
// punctuation stripped and truncated, appended to "provider_slot".
// It must stay stable across discovery cycles for the same
// configuration since runtime status patches key on it.
func EntryID(provider registry.Type, slot int, model string) string {
	segment := model
	if idx := strings.LastIndex(segment, "/"); idx >= 0 {
		segment = segment[idx+1:]
	}
	// Truncation counts runes, not bytes, so non-ASCII letters are
	// never split mid-encoding.
	var b strings.Builder
	kept := 0
	for _, r := range strings.ToLower(segment) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
		kept++
		if kept == maxIDSegment {
			break
		}
	}
	return fmt.Sprintf("%s_%d_%s", provider, slot, b.String())
}

// buildLabel renders the human-readable entry label. When a provider
// type has several credentials the slot is called out so operators can
// tell the keys apart.
func buildLabel(provider registry.Type, displayName string, slot, totalSlots int) string {
	base := capitalize(string(provider)) + " " + displayName
	if totalSlots <= 1 {
		return base
	}
	if slot == 1 {
		return base + " (primary)"
	}
	return fmt.Sprintf("%s (key %d)", base, slot)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// sortEntries applies the ranking rule: availability rank, then latency
// ascending with missing latency last, then provider type and label for
// determinism.
func sortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if ra, rb := a.Status.rank(), b.Status.rank(); ra != rb {
			return ra < rb
		}
		switch {
		case a.LatencyMs != nil && b.LatencyMs != nil:
			if *a.LatencyMs != *b.LatencyMs {
				return *a.LatencyMs < *b.LatencyMs
			}
		case a.LatencyMs != nil:
			return true
		case b.LatencyMs != nil:
			return false
		}
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		return a.Label < b.Label
	})
}

// Snapshot is the result of one full discovery cycle. The entry slice
// is replaced wholesale by the next cycle; individual entries may be
// patched in place between cycles.
type Snapshot struct {
	CreatedAt time.Time
	TTL       time.Duration
	Entries   []*Entry
}
