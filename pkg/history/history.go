// Package history records probe and routing observations so operators
// can reconstruct why a provider was ranked or skipped. The log is
// append-only and strictly diagnostic; discovery never reads it back
// to make decisions.
package history

import (
	"context"
	"time"
)

// Source identifies what produced an observation.
type Source string

const (
	// SourceDiscovery marks observations recorded during a discovery
	// cycle's probe sweep.
	SourceDiscovery Source = "discovery"

	// SourceVerify marks observations from verify-on-first-use checks.
	SourceVerify Source = "verify"

	// SourceRoute marks observations from real analysis dispatches.
	SourceRoute Source = "route"
)

// Observation is one recorded fact about a provider entry.
// It never carries the credential itself.
type Observation struct {
	EntryID    string    `json:"entry_id"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Status     string    `json:"status"`
	LatencyMs  int64     `json:"latency_ms"`
	Detail     string    `json:"detail,omitempty"`
	Source     Source    `json:"source"`
	ObservedAt time.Time `json:"observed_at"`
}

// Store is an append-only observation log.
type Store interface {
	// Record appends one observation. Failures to record must not
	// disturb the caller's control flow; callers log and continue.
	Record(ctx context.Context, obs Observation) error

	// Recent returns up to limit observations, newest first.
	Recent(ctx context.Context, limit int) ([]Observation, error)

	Close() error
}
