// Package routing selects a provider entry for each analysis request
// and executes it with bounded, ranked fallback. Fallback is strictly
// a rate-limit mitigation: any other failure from the primary
// selection propagates immediately.
package routing

import (
	"context"
	"log/slog"
	"time"

	"aurora-hq/saturn/pkg/discovery"
	"aurora-hq/saturn/pkg/history"
	"aurora-hq/saturn/pkg/providers"
	"aurora-hq/saturn/pkg/telemetry/metrics"
)

// EntryProber runs a single verify-on-first-use probe.
// *discovery.Verifier implements it.
type EntryProber interface {
	ProbeEntry(ctx context.Context, e discovery.Entry) providers.ProbeResult
}

// Options configures a Router.
type Options struct {
	// ConfirmFirstUse reports whether an ASSUMED entry of the given
	// provider type must pass a probe before its first real call.
	ConfirmFirstUse func(providerType string) bool

	// MaxFallbacks bounds fallback attempts after a rate-limited
	// primary. Zero selects the default of 2; a negative value
	// disables fallback entirely.
	MaxFallbacks int

	Logger  *slog.Logger
	Metrics *metrics.Collector
	History history.Store
}

// Router dispatches analysis requests across the ranked registry.
type Router struct {
	cache   *discovery.Cache
	prober  EntryProber
	clients providers.ClientSet
	confirm func(providerType string) bool

	maxFallbacks int
	log          *slog.Logger
	metrics      *metrics.Collector
	history      history.Store
}

// NewRouter builds a router over the discovery cache and backend
// clients.
func NewRouter(cache *discovery.Cache, prober EntryProber, clients providers.ClientSet, opts Options) *Router {
	switch {
	case opts.MaxFallbacks == 0:
		opts.MaxFallbacks = 2
	case opts.MaxFallbacks < 0:
		opts.MaxFallbacks = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ConfirmFirstUse == nil {
		opts.ConfirmFirstUse = func(string) bool { return true }
	}
	return &Router{
		cache:        cache,
		prober:       prober,
		clients:      clients,
		confirm:      opts.ConfirmFirstUse,
		maxFallbacks: opts.MaxFallbacks,
		log:          opts.Logger,
		metrics:      opts.Metrics,
		history:      opts.History,
	}
}

// ListProviders returns the ranked, credential-free provider views.
// Force bypasses the snapshot TTL.
func (r *Router) ListProviders(ctx context.Context, force bool) []discovery.View {
	trigger := "ttl"
	if force {
		trigger = "forced"
	}
	r.cache.Discover(ctx, force, trigger)

	entries := r.cache.Entries()
	views := make([]discovery.View, len(entries))
	for i := range entries {
		views[i] = entries[i].View()
	}
	return views
}

// Route resolves a provider (explicit id or auto-selection) and
// executes the analysis with rate-limit fallback.
func (r *Router) Route(ctx context.Context, providerID string, req providers.AnalysisRequest) (*providers.IssueAnalysis, error) {
	r.cache.Discover(ctx, false, "ttl")

	primary, err := r.selectEntry(providerID)
	if err != nil {
		return nil, err
	}

	attempted := map[string]bool{primary.ID: true}
	result, err := r.attempt(ctx, primary, req)
	if err == nil {
		return result, nil
	}
	if !providers.IsRateLimit(err) {
		// Fallback is not a general retry mechanism.
		return nil, err
	}

	r.log.Warn("provider rate limited",
		slog.String("entry", primary.ID),
		slog.String("error", err.Error()))
	r.cache.Patch(primary.ID, discovery.StatusRateLimited, "rate limit exceeded during analysis")

	for _, fallback := range r.fallbackCandidates(attempted) {
		if len(attempted) > r.maxFallbacks {
			break
		}
		attempted[fallback.ID] = true
		if r.metrics != nil {
			r.metrics.RecordFallback()
		}
		r.log.Info("falling back", slog.String("entry", fallback.ID))

		result, ferr := r.attempt(ctx, fallback, req)
		if ferr == nil {
			return result, nil
		}
		if providers.IsRateLimit(ferr) {
			r.cache.Patch(fallback.ID, discovery.StatusRateLimited, "rate limit exceeded during fallback")
			continue
		}
		// Other fallback failures are swallowed so one bad candidate
		// cannot mask a reachable one later in the ranking.
		r.log.Warn("fallback attempt failed",
			slog.String("entry", fallback.ID),
			slog.String("error", ferr.Error()))
	}

	return nil, &RateLimitExhaustedError{PrimaryID: primary.ID, Attempted: len(attempted)}
}

// selectEntry resolves the explicit id, auto-selects a single usable
// entry, or raises the appropriate selection error.
func (r *Router) selectEntry(providerID string) (discovery.Entry, error) {
	if providerID != "" {
		e, ok := r.cache.Get(providerID)
		if !ok {
			return discovery.Entry{}, &NotFoundError{ID: providerID, Valid: r.cache.IDs()}
		}
		return e, nil
	}

	usable := r.cache.Usable()
	switch len(usable) {
	case 0:
		return discovery.Entry{}, &NoProvidersError{}
	case 1:
		r.log.Info("auto-selected provider", slog.String("entry", usable[0].ID))
		return usable[0], nil
	default:
		ids := make([]string, len(usable))
		for i, e := range usable {
			ids[i] = e.ID
		}
		return discovery.Entry{}, &AmbiguousError{Usable: ids}
	}
}

// fallbackCandidates returns the ranked usable entries not yet tried in
// this request.
func (r *Router) fallbackCandidates(attempted map[string]bool) []discovery.Entry {
	var out []discovery.Entry
	for _, e := range r.cache.Usable() {
		if !attempted[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// attempt executes one entry: verify-on-first-use when required, then
// the real call, then status promotion on success.
func (r *Router) attempt(ctx context.Context, e discovery.Entry, req providers.AnalysisRequest) (*providers.IssueAnalysis, error) {
	if e.Status == discovery.StatusAssumed && r.confirm(string(e.Provider)) {
		if err := r.confirmFirstUse(ctx, e); err != nil {
			return nil, err
		}
	}

	client, err := r.clients.For(e.Provider)
	if err != nil {
		return nil, err
	}

	r.log.Info("calling provider",
		slog.String("entry", e.ID),
		slog.String("model", e.Model))
	start := time.Now()
	result, err := client.Analyze(ctx, e.APIKey, e.Model, req)
	elapsed := time.Since(start).Milliseconds()

	switch {
	case err == nil:
		if e.Status == discovery.StatusAssumed {
			r.cache.Patch(e.ID, discovery.StatusAvailable, "")
			r.log.Info("provider confirmed after successful use", slog.String("entry", e.ID))
		}
		r.observe(e, "ok", string(discovery.StatusAvailable), elapsed, "")
		return result, nil
	case providers.IsRateLimit(err):
		r.observe(e, "rate_limited", string(discovery.StatusRateLimited), elapsed, err.Error())
		return nil, err
	default:
		r.observe(e, "error", string(discovery.StatusError), elapsed, err.Error())
		return nil, err
	}
}

// confirmFirstUse probes an ASSUMED entry before its first real call.
// A failed probe patches the entry to its definitive status and
// reports the currently verified alternatives.
func (r *Router) confirmFirstUse(ctx context.Context, e discovery.Entry) error {
	r.log.Info("verifying assumed provider before first use", slog.String("entry", e.ID))
	result := r.prober.ProbeEntry(ctx, e)
	if result.Status == providers.ProbeOK {
		return nil
	}

	status := discovery.StatusError
	switch result.Status {
	case providers.ProbeRateLimited:
		status = discovery.StatusRateLimited
	case providers.ProbeUnavailable:
		status = discovery.StatusUnavailable
	}
	r.cache.Patch(e.ID, status, result.Detail)

	var verified []string
	for _, other := range r.cache.Entries() {
		if other.Status == discovery.StatusAvailable && other.ID != e.ID {
			verified = append(verified, other.Label)
		}
	}
	if len(verified) > 3 {
		verified = verified[:3]
	}
	return &VerificationFailedError{ID: e.ID, Detail: result.Detail, Verified: verified}
}

func (r *Router) observe(e discovery.Entry, outcome, status string, latencyMs int64, detail string) {
	if r.metrics != nil {
		r.metrics.RecordRoute(string(e.Provider), outcome)
	}
	if r.history != nil {
		obs := history.Observation{
			EntryID:    e.ID,
			Provider:   string(e.Provider),
			Model:      e.Model,
			Status:     status,
			LatencyMs:  latencyMs,
			Detail:     detail,
			Source:     history.SourceRoute,
			ObservedAt: time.Now().UTC(),
		}
		if err := r.history.Record(context.Background(), obs); err != nil {
			r.log.Warn("history record failed", slog.String("error", err.Error()))
		}
	}
}
