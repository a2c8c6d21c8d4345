package providers

import (
	"context"
	"fmt"

	"aurora-hq/saturn/pkg/registry"
)

// BackendClient is the capability implemented once per provider type.
// The discovery engine uses Probe to verify (credential, model) pairs and
// the router uses Analyze to execute real requests.
//
// Implementations must be safe for concurrent use and must respect
// context cancellation on both methods.
type BackendClient interface {
	// Type returns the provider type this client serves.
	Type() registry.Type

	// Probe performs a lightweight functional check of a (credential,
	// model) pair. Rate-limit conditions are classified distinctly from
	// generic errors so that the caller can record RATE_LIMITED rather
	// than ERROR. Probe never returns a Go error; failures are expressed
	// in the result.
	Probe(ctx context.Context, apiKey, model string) ProbeResult

	// Analyze executes a real issue analysis against the backend.
	// A rate-limit condition is reported as *RateLimitError so the
	// router can apply fallback only on that condition.
	Analyze(ctx context.Context, apiKey, model string, req AnalysisRequest) (*IssueAnalysis, error)
}

// ClientSet maps provider types to their backend client implementations.
// Clients are selected by type tag at registry-build time; adding a
// provider type means adding one implementation and one map entry.
type ClientSet map[registry.Type]BackendClient

// For returns the client for a provider type, or *UnknownTypeError when
// no implementation is registered. An unknown type indicates a
// registry/router mismatch, not a user error.
func (cs ClientSet) For(t registry.Type) (BackendClient, error) {
	client, ok := cs[t]
	if !ok {
		return nil, &UnknownTypeError{Type: string(t)}
	}
	return client, nil
}

// NewClientSet builds a client set from individual clients, keyed by
// their reported type. Duplicate types are rejected.
func NewClientSet(clients ...BackendClient) (ClientSet, error) {
	cs := make(ClientSet, len(clients))
	for _, client := range clients {
		t := client.Type()
		if _, exists := cs[t]; exists {
			return nil, fmt.Errorf("duplicate backend client for provider type %q", t)
		}
		cs[t] = client
	}
	return cs, nil
}
